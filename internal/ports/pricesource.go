package ports

import "context"

// PriceSource supplies the current market price for a symbol.
// A failed fetch is reported as an error wrapping ErrPriceUnavailable; the
// caller must skip the evaluation cycle rather than invoke the sizing engine
// without a price.
type PriceSource interface {
	// CurrentPrice returns the latest price for the symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)

	// Ping checks connectivity to the underlying market data provider.
	Ping(ctx context.Context) error
}
