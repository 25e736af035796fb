package domain

// PositionRequest holds the static parameters of a planned leveraged position.
// It is constructed once per evaluation cycle and never mutated.
type PositionRequest struct {
	Symbol       string   // Trading symbol (e.g., "BTC/USDT"), carried for display/journaling
	Equity       float64  // Account equity in the quote currency
	EntryPrice   float64  // Planned entry price
	Leverage     float64  // Leverage multiplier, must be positive
	Side         Side     // LONG or SHORT
	StopLoss     *float64 // Optional stop-loss price; nil means no risk-based cap requested
	RiskFraction float64  // Fraction of equity accepted as loss before the stop (0.02 = 2%)
}

// DefaultRiskFraction is applied when no risk fraction is supplied.
const DefaultRiskFraction = 0.02
