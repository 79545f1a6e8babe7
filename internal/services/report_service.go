package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankstat/internal/amqp"
	"bankstat/internal/core"
	applog "bankstat/internal/log"
	"bankstat/internal/market"
	"bankstat/internal/report"
	"bankstat/internal/sink"
	"bankstat/internal/statement"

	"github.com/google/uuid"
)

var (
	ErrUnknownReport   = errors.New("unknown report")
	ErrInvalidPeriod   = errors.New("invalid cashback period")
	ErrMissingCategory = errors.New("missing category")
	ErrNoPublisher     = errors.New("async report requests are not configured")
	ErrNoSink          = errors.New("report sink is not configured")
)

// Params holds the inputs of any report. Each report reads only its own fields.
type Params struct {
	// Anchor is "YYYY-MM-DD HH:MM:SS" for dashboard and events. Empty means now.
	Anchor string
	// Window is W, M, Y or ALL for events.
	Window string
	// Date is dd.mm.yyyy for spending. Empty means today.
	Date     string
	Category string
	// Year and Month select the cashback period. Zero means the current one.
	Year  int
	Month int
}

// Result is a built report and, when it was saved, where it went.
type Result struct {
	Name    string
	Payload any
	Records int
	Path    string
}

// ReportService loads the statement on every call and assembles reports from it.
type ReportService struct {
	loader    statement.Loader
	enricher  market.Enricher
	saver     sink.Saver
	publisher amqp.Publisher
	now       func() time.Time
	newID     func() string
}

type Option func(*ReportService)

// WithPublisher enables RequestReport.
func WithPublisher(p amqp.Publisher) Option {
	return func(s *ReportService) { s.publisher = p }
}

// WithClock replaces time.Now for default anchors.
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

// NewReportService wires a loader with optional enrichment and sink. A nil
// enricher yields empty rate and price lists.
func NewReportService(loader statement.Loader, enricher market.Enricher, saver sink.Saver, opts ...Option) *ReportService {
	s := &ReportService{
		loader:   loader,
		enricher: enricher,
		saver:    saver,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// records loads the statement. Malformed content degrades to no records.
func (s *ReportService) records(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, statement.ErrSourceParse) {
			applog.FromContext(ctx).WithComponent(applog.ComponentStatement).WarnContext(ctx,
				"Statement could not be parsed, using empty record set", applog.FieldError, err)
			return nil, nil
		}
		return nil, err
	}
	return txs, nil
}

func (s *ReportService) anchor(raw string) (time.Time, error) {
	if raw == "" {
		return s.now().UTC().Truncate(time.Second), nil
	}
	return core.ParseAnchor(raw)
}

func (s *ReportService) Dashboard(ctx context.Context, at string) (report.DashboardPayload, error) {
	anchor, err := s.anchor(at)
	if err != nil {
		return report.DashboardPayload{}, err
	}
	txs, err := s.records(ctx)
	if err != nil {
		return report.DashboardPayload{}, err
	}
	return report.Dashboard(ctx, anchor, txs, s.enricher), nil
}

func (s *ReportService) Events(ctx context.Context, at, window string) (report.WindowPayload, error) {
	anchor, err := s.anchor(at)
	if err != nil {
		return report.WindowPayload{}, err
	}
	w, err := core.ParseWindow(window)
	if err != nil {
		return report.WindowPayload{}, err
	}
	txs, err := s.records(ctx)
	if err != nil {
		return report.WindowPayload{}, err
	}
	return report.WindowReport(ctx, anchor, w, txs, s.enricher)
}

func (s *ReportService) Cashback(ctx context.Context, year, month int) (report.CashbackPayload, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if year < 1 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: year %d month %d", ErrInvalidPeriod, year, month)
	}
	txs, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return report.Cashback(txs, year, month), nil
}

func (s *ReportService) Spending(ctx context.Context, category, date string) (report.SpendingPayload, error) {
	if category == "" {
		return report.SpendingPayload{}, ErrMissingCategory
	}
	var anchor time.Time
	if date == "" {
		now := s.now().UTC()
		anchor = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	} else {
		var err error
		if anchor, err = core.ParseReportDate(date); err != nil {
			return report.SpendingPayload{}, err
		}
	}
	txs, err := s.records(ctx)
	if err != nil {
		return report.SpendingPayload{}, err
	}
	return report.Spending(txs, category, anchor), nil
}

// Build assembles the named report.
func (s *ReportService) Build(ctx context.Context, name string, p Params) (Result, error) {
	res := Result{Name: name}
	var err error
	switch name {
	case report.NameDashboard:
		var out report.DashboardPayload
		out, err = s.Dashboard(ctx, p.Anchor)
		res.Payload, res.Records = out, len(out.TopTransactions)
	case report.NameEvents:
		var out report.WindowPayload
		out, err = s.Events(ctx, p.Anchor, p.Window)
		res.Payload, res.Records = out, len(out.Expenses.Main)+len(out.Income.Main)
	case report.NameCashback:
		var out report.CashbackPayload
		out, err = s.Cashback(ctx, p.Year, p.Month)
		res.Payload, res.Records = out, len(out)
	case report.NameSpending:
		var out report.SpendingPayload
		out, err = s.Spending(ctx, p.Category, p.Date)
		res.Payload, res.Records = out, len(out.Operations)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// BuildAndSave builds the named report and writes it through the sink. An
// empty filename lets the sink pick one.
func (s *ReportService) BuildAndSave(ctx context.Context, name string, p Params, filename string) (Result, error) {
	if s.saver == nil {
		return Result{}, ErrNoSink
	}
	res, err := s.Build(ctx, name, p)
	if err != nil {
		return Result{}, err
	}
	if res.Path, err = s.saver.Save(name, res.Payload, filename); err != nil {
		return Result{}, fmt.Errorf("save %s report: %w", name, err)
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogReportBuilt(ctx, name, res.Records, res.Path)
	return res, nil
}

// RequestReport queues the named report for a worker and returns the request id.
func (s *ReportService) RequestReport(ctx context.Context, name string, p Params, filename string) (string, error) {
	if s.publisher == nil {
		return "", ErrNoPublisher
	}
	if !KnownReport(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	if err := sink.ValidateFilename(filename); err != nil {
		return "", err
	}
	msg := amqp.NewReportRequestMessage(s.newID(), name)
	msg.Anchor = p.Anchor
	msg.Window = p.Window
	msg.Date = p.Date
	msg.Category = p.Category
	msg.Year = p.Year
	msg.Month = p.Month
	msg.Filename = filename
	if err := s.publisher.PublishReportRequest(ctx, msg); err != nil {
		return "", fmt.Errorf("request %s report: %w", name, err)
	}
	return msg.ID, nil
}

// ParamsFromMessage is the inverse of the mapping in RequestReport.
func ParamsFromMessage(msg *amqp.ReportRequestMessage) Params {
	return Params{
		Anchor:   msg.Anchor,
		Window:   msg.Window,
		Date:     msg.Date,
		Category: msg.Category,
		Year:     msg.Year,
		Month:    msg.Month,
	}
}

func KnownReport(name string) bool {
	switch name {
	case report.NameDashboard, report.NameEvents, report.NameCashback, report.NameSpending:
		return true
	}
	return false
}

// IsInvalidInput reports whether err was caused by caller-supplied parameters.
func IsInvalidInput(err error) bool {
	return errors.Is(err, core.ErrInvalidWindowCode) ||
		errors.Is(err, core.ErrDateParse) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrMissingCategory) ||
		errors.Is(err, ErrUnknownReport) ||
		errors.Is(err, sink.ErrInvalidFilename)
}
