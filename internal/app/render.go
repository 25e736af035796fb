package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"liveRiskSizer/internal/domain"
	"liveRiskSizer/internal/utils"
)

const ruleWidth = 86

// printBanner writes the static session parameters once at startup.
func (m *Monitor) printBanner() {
	fmt.Fprintf(m.out, "\nStarting live risk monitor. Press Ctrl+C to exit.\n\n")
	fmt.Fprintf(m.out, "Exchange: %s | Symbol: %s | Side: %s\n", m.cfg.Exchange, m.cfg.Symbol, m.cfg.Side)
	fmt.Fprintf(m.out, "Equity: %s %s | Leverage: %sx | Entry: %s\n",
		utils.FormatAmount(m.cfg.Equity, 2), m.cfg.QuoteCurrency,
		utils.FormatAmount(m.cfg.Leverage, 0),
		utils.FormatAmount(m.cfg.EntryPrice, 2))
	if m.cfg.StopLoss != nil {
		fmt.Fprintf(m.out, "Stop Loss: %s\n", utils.FormatAmount(*m.cfg.StopLoss, 2))
	}
	fmt.Fprintln(m.out)
}

// renderAssessment writes one formatted assessment block. Margin and equity
// figures are additionally shown converted to the display currency via the
// FX rate; the sizing math itself always stays in the quote currency.
func renderAssessment(w io.Writer, a *domain.RiskAssessment, fxRate float64, quoteCur, displayCur string, ts time.Time) {
	equityDisp := a.Equity * fxRate
	marginUnitDisp := a.MarginPerUnit * fxRate
	recMarginDisp := a.RecommendedMarginCapital * fxRate

	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, "%s  |  Live: %s   Entry: %s   Side: %s   Lvg: %sx\n",
		ts.Format("2006-01-02 15:04:05 UTC"),
		utils.FormatAmount(a.LivePrice, 2),
		utils.FormatAmount(a.EntryPrice, 2),
		a.Side,
		utils.FormatAmount(a.Leverage, 0))
	fmt.Fprintf(w, "Equity: %s %s   FX(%s->%s): %s\n",
		utils.FormatAmount(equityDisp, 2), displayCur,
		quoteCur, displayCur,
		utils.FormatAmount(fxRate, 4))
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	fmt.Fprintf(w, "Liquidation Price (approx): %s\n", utils.FormatAmount(a.LiquidationPrice, 2))
	if a.HasStop() {
		fmt.Fprintf(w, "Per-Unit Risk to Stop: %s\n", utils.FormatAmount(a.PerUnitRisk, 2))
		fmt.Fprintf(w, "Units by Risk (<= %.1f%% equity): %s\n",
			a.RiskFraction*100, utils.FormatAmount(a.UnitsByRisk, 4))
		if a.MisplacedStop {
			fmt.Fprintf(w, "WARNING: stop is on the wrong side of entry; risk cap ignored\n")
		}
	}
	fmt.Fprintf(w, "Margin per Unit: %s  (%s %s)\n",
		utils.FormatAmount(a.MarginPerUnit, 2),
		utils.FormatAmount(marginUnitDisp, 2), displayCur)
	fmt.Fprintf(w, "Max Units by Margin: %s\n", utils.FormatAmount(a.MaxUnitsByMargin, 4))
	fmt.Fprintf(w, "Recommended Units: %s\n", utils.FormatAmount(a.RecommendedUnits, 4))
	fmt.Fprintf(w, "Recommended Margin Capital: %s (%s %s)\n",
		utils.FormatAmount(a.RecommendedMarginCapital, 2),
		utils.FormatAmount(recMarginDisp, 2), displayCur)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}
