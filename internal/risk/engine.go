package risk

import (
	"errors"
	"math"

	"liveRiskSizer/internal/domain"
)

// ErrInvalidLeverage is returned whenever a computation is attempted with a
// non-positive leverage. It is the only error the engine surfaces; every
// other degenerate input degrades to zero-valued, conservative output.
var ErrInvalidLeverage = errors.New("leverage must be positive")

// LiquidationPrice computes the simplified isolated-margin liquidation
// approximation, ignoring maintenance margin and fees.
//
//	long:  entry * (1 - 1/leverage)
//	short: entry * (1 + 1/leverage)
func LiquidationPrice(entry, leverage float64, side domain.Side) (float64, error) {
	if leverage <= 0 {
		return 0, ErrInvalidLeverage
	}
	if side == domain.SideLong {
		return entry * (1 - 1.0/leverage), nil
	}
	return entry * (1 + 1.0/leverage), nil
}

// MarginPerUnit returns the collateral required to hold one unit of the
// instrument at the given leverage.
func MarginPerUnit(entry, leverage float64) (float64, error) {
	if leverage <= 0 {
		return 0, ErrInvalidLeverage
	}
	return entry / leverage, nil
}

// MaxUnitsByMargin returns how many units the account equity can collateralize.
// Fractional unit counts are valid; perp instruments commonly size to decimals.
// A non-positive margin per unit (e.g. entry <= 0) yields zero units.
func MaxUnitsByMargin(equity, entry, leverage float64) (float64, error) {
	mpu, err := MarginPerUnit(entry, leverage)
	if err != nil {
		return 0, err
	}
	if mpu <= 0 {
		return 0, nil
	}
	return equity / mpu, nil
}

// PerUnitRisk returns the monetary loss per unit if the position is closed at
// the stop price. A nil stop yields zero. A stop on the wrong side of the
// entry clamps to zero rather than producing negative risk; callers should
// treat that combination as a misconfigured stop (see RiskAssessment.MisplacedStop).
func PerUnitRisk(entry float64, stopLoss *float64, side domain.Side) float64 {
	if stopLoss == nil {
		return 0
	}
	if side == domain.SideLong {
		return math.Max(0, entry-*stopLoss)
	}
	return math.Max(0, *stopLoss-entry)
}

// SafeUnitsByRisk returns the unit count such that
// units * perUnitRisk <= equity * riskFraction. The risk fraction is clamped
// to be non-negative. A non-positive per-unit risk means risk-based sizing is
// undefined and conservatively yields zero.
func SafeUnitsByRisk(equity, riskFraction, perUnitRisk float64) float64 {
	riskBudget := equity * math.Max(0, riskFraction)
	if perUnitRisk <= 0 {
		return 0
	}
	return riskBudget / perUnitRisk
}

// RecommendUnits reconciles the margin-based and risk-based unit caps for the
// request at the given live price and returns the full assessment.
//
// The recommendation is the minimum of the margin cap and, when a usable stop
// produced a positive risk cap, the risk cap. An absent or unusable stop must
// not zero out the recommendation through the min. Finally, if the live price
// has already crossed the liquidation boundary for the side, the
// recommendation is forced to zero regardless of the caps.
func RecommendUnits(req domain.PositionRequest, livePrice float64) (*domain.RiskAssessment, error) {
	liq, err := LiquidationPrice(req.EntryPrice, req.Leverage, req.Side)
	if err != nil {
		return nil, err
	}
	mpu, err := MarginPerUnit(req.EntryPrice, req.Leverage)
	if err != nil {
		return nil, err
	}
	maxByMargin, err := MaxUnitsByMargin(req.Equity, req.EntryPrice, req.Leverage)
	if err != nil {
		return nil, err
	}

	puRisk := PerUnitRisk(req.EntryPrice, req.StopLoss, req.Side)
	unitsByRisk := SafeUnitsByRisk(req.Equity, req.RiskFraction, puRisk)

	recommended := maxByMargin
	if unitsByRisk > 0 && unitsByRisk < recommended {
		recommended = unitsByRisk
	}

	// Never size into instant liquidation: if the live price is already past
	// the liquidation boundary for this side, recommend nothing.
	if (req.Side == domain.SideLong && livePrice <= liq) ||
		(req.Side == domain.SideShort && livePrice >= liq) {
		recommended = 0
	}

	return &domain.RiskAssessment{
		Symbol:       req.Symbol,
		Side:         req.Side,
		EntryPrice:   req.EntryPrice,
		LivePrice:    livePrice,
		Leverage:     req.Leverage,
		Equity:       req.Equity,
		StopLoss:     req.StopLoss,
		RiskFraction: req.RiskFraction,

		LiquidationPrice:         liq,
		MarginPerUnit:            mpu,
		MaxUnitsByMargin:         maxByMargin,
		PerUnitRisk:              puRisk,
		UnitsByRisk:              unitsByRisk,
		RecommendedUnits:         recommended,
		RecommendedMarginCapital: recommended * mpu,

		MisplacedStop: req.StopLoss != nil && puRisk == 0,
	}, nil
}
