// Package file loads bank statements exported as .xlsx or .csv files.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"bankstat/internal/core"
	"bankstat/internal/statement"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// Loader reads the statement at Path on every Load call.
type Loader struct {
	Path    string
	Columns statement.Columns
}

var _ statement.Loader = (*Loader)(nil)

func New(path string) *Loader {
	return &Loader{Path: path, Columns: statement.DefaultColumns}
}

func (l *Loader) Load(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, err := readTable(l.Path, l.Columns.OperatedAt)
	if err != nil {
		return nil, err
	}
	txs, stats, err := statement.ParseRows(values, l.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(l.Path), err)
	}
	attrs := []any{
		"path", l.Path,
		"rows", stats.Rows,
		"loaded", stats.Loaded,
		"no_status", stats.NoStatus,
		"invalid", stats.Invalid,
	}
	if stats.Invalid > 0 {
		slog.WarnContext(ctx, "Statement rows skipped: unparsable amounts", attrs...)
	} else {
		slog.DebugContext(ctx, "Statement file loaded", attrs...)
	}
	return txs, nil
}

// ReadTable returns the cell matrix of a statement file with the default
// headers, choosing the reader by extension.
func ReadTable(path string) ([][]string, error) {
	return readTable(path, statement.DefaultColumns.OperatedAt)
}

func readTable(path, dateHeader string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, dateHeader)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// readXLSX reads the first sheet with unformatted cell values, so numeric
// amounts keep their plain decimal form whatever number format the cell has.
// Date serials in the dateHeader column are rendered as operation timestamps.
func readXLSX(path, dateHeader string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", statement.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", statement.ErrSourceParse, path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", statement.ErrSourceParse, sheets[0], err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	col := slices.IndexFunc(rows[0], func(h string) bool {
		return strings.TrimSpace(h) == dateHeader
	})
	if col < 0 {
		return rows, nil
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	for _, row := range rows[1:] {
		if col < len(row) {
			row[col] = serialToTimestamp(row[col], date1904)
		}
	}
	return rows, nil
}

// serialToTimestamp renders an Excel date serial in the export's timestamp
// layout. Anything that is not a number is returned unchanged.
func serialToTimestamp(v string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v
	}
	return t.Round(time.Second).Format(core.OperationLayout)
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", statement.ErrSourceUnavailable, path, err)
	}
	defer fh.Close()
	return parseCSV(fh)
}

func parseCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("%w: %v", statement.ErrSourceParse, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(first)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", statement.ErrSourceParse, err)
	}
	return rows, nil
}

// detectDelimiter picks ';' when the header line has more semicolons than
// commas. Bank exports use ';' because amounts carry decimal commas.
func detectDelimiter(head []byte) rune {
	line, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
