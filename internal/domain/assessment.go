package domain

// RiskAssessment is the full sizing result derived from a PositionRequest and
// a live price. It is a pure function of its inputs: no clock, no randomness,
// no hidden state. A fresh assessment is derived each refresh cycle.
type RiskAssessment struct {
	// Echo of the inputs used to produce the assessment.
	Symbol       string
	Side         Side
	EntryPrice   float64
	LivePrice    float64
	Leverage     float64
	Equity       float64
	StopLoss     *float64
	RiskFraction float64

	// Derived values.
	LiquidationPrice         float64
	MarginPerUnit            float64
	MaxUnitsByMargin         float64
	PerUnitRisk              float64
	UnitsByRisk              float64
	RecommendedUnits         float64
	RecommendedMarginCapital float64

	// MisplacedStop is set when a stop was supplied but sits on the wrong
	// side of the entry, so the per-unit risk clamped to zero and the stop
	// contributed nothing to sizing.
	MisplacedStop bool
}

// HasStop reports whether a stop-loss price was supplied.
func (a *RiskAssessment) HasStop() bool {
	return a.StopLoss != nil
}
