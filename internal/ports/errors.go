package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these sentinels so the
// application loop can branch with errors.Is without knowing the provider.
var (
	// General
	ErrUnknown         = errors.New("unknown error occurred")
	ErrInvalidRequest  = errors.New("invalid request parameters or format")
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")
	ErrConfiguration   = errors.New("invalid or missing configuration")

	// Market data
	ErrPriceUnavailable     = errors.New("live price is unavailable")
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// FX rates
	ErrRateUnavailable = errors.New("FX rate is unavailable")

	// Journal
	ErrQueryFailed  = errors.New("journal query failed")
	ErrAppendFailed = errors.New("journal append failed")
)
