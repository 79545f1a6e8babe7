package statement

import (
	"context"
	"errors"

	"bankstat/internal/core"
)

var (
	// ErrSourceUnavailable is returned when the statement source cannot be opened.
	ErrSourceUnavailable = errors.New("statement source unavailable")
	// ErrSourceParse is returned when the source opened but its content is not a
	// recognizable operations table.
	ErrSourceParse = errors.New("statement source malformed")
)

// Ports for inbound statement adapters.
type (
	// Loader reads the full set of valid operations from a statement source.
	// Rows without a status never leave the loader.
	Loader interface {
		Load(ctx context.Context) ([]core.Transaction, error)
	}

	// LoaderFunc adapts a function to the Loader interface.
	LoaderFunc func(ctx context.Context) ([]core.Transaction, error)
)

func (f LoaderFunc) Load(ctx context.Context) ([]core.Transaction, error) {
	return f(ctx)
}
