package ports

import "context"

// FXSource supplies a conversion rate between two currency codes.
// Implementations must return exactly 1.0 when the codes are equal, and a
// best-effort (possibly stale or fallback) positive rate otherwise. Rates are
// consumed only for display conversion, never by the sizing math.
type FXSource interface {
	Rate(ctx context.Context, base, quote string) (float64, error)
}
