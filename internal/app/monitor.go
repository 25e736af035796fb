package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liveRiskSizer/config"
	"liveRiskSizer/internal/ports"
	"liveRiskSizer/internal/risk"
)

// Monitor orchestrates the live sizing loop: it pulls a price and an FX rate
// each refresh interval, feeds them plus the static position parameters into
// the risk engine, renders the assessment, and journals it.
type Monitor struct {
	cfg     *config.Config
	logger  ports.Logger
	prices  ports.PriceSource
	fx      ports.FXSource
	journal ports.AssessmentJournal
	out     io.Writer

	warnedMisplacedStop bool
}

// NewMonitor creates a new monitor instance.
func NewMonitor(
	cfg *config.Config,
	logger ports.Logger,
	prices ports.PriceSource,
	fx ports.FXSource,
	journal ports.AssessmentJournal,
	out io.Writer,
) (*Monitor, error) {
	if cfg == nil || logger == nil || prices == nil || fx == nil || journal == nil || out == nil {
		return nil, fmt.Errorf("missing required dependencies for Monitor")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		cfg:     cfg,
		logger:  logger,
		prices:  prices,
		fx:      fx,
		journal: journal,
		out:     out,
	}, nil
}

// Run starts the refresh loop and blocks until the context is canceled or an
// interrupt/termination signal arrives.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info(ctx, "Starting live risk monitor", map[string]interface{}{
		"symbol":   m.cfg.Symbol,
		"side":     string(m.cfg.Side),
		"interval": m.cfg.RefreshInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			m.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := m.prices.Ping(ctx); err != nil {
		m.logger.Error(ctx, err, "Price source is unreachable")
		return fmt.Errorf("price source ping failed: %w", err)
	}

	m.printBanner()

	// Evaluate immediately, then on every tick.
	m.evaluateCycle(ctx)

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "Live risk monitor stopped")
			return nil
		case <-ticker.C:
			m.evaluateCycle(ctx)
		}
	}
}

// evaluateCycle runs one refresh cycle. Every failure short of context
// cancellation is absorbed: a missing price skips the cycle, a missing FX
// rate degrades to the neutral 1.0, and a journal failure is logged. The
// sizing engine is never invoked without a live price.
func (m *Monitor) evaluateCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	livePrice, err := m.prices.CurrentPrice(ctx, m.cfg.Symbol)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		m.logger.Warn(ctx, "Could not fetch live price, retrying next cycle", map[string]interface{}{
			"symbol": m.cfg.Symbol,
			"error":  err.Error(),
		})
		return
	}

	fxRate, err := m.fx.Rate(ctx, m.cfg.QuoteCurrency, m.cfg.DisplayCurrency)
	if err != nil {
		m.logger.Warn(ctx, "Could not fetch FX rate, using neutral 1.0", map[string]interface{}{
			"base":  m.cfg.QuoteCurrency,
			"quote": m.cfg.DisplayCurrency,
			"error": err.Error(),
		})
		fxRate = 1.0
	}

	assessment, err := risk.RecommendUnits(m.cfg.Request(), livePrice)
	if err != nil {
		// Only invalid leverage reaches here; config validation normally
		// rules it out before the loop starts.
		m.logger.Error(ctx, err, "Risk evaluation failed", map[string]interface{}{"symbol": m.cfg.Symbol})
		return
	}

	if assessment.MisplacedStop && !m.warnedMisplacedStop {
		m.warnedMisplacedStop = true
		m.logger.Warn(ctx, "Stop loss is on the wrong side of the entry; it contributes no risk cap and sizing is margin-only", map[string]interface{}{
			"entry": m.cfg.EntryPrice,
			"stop":  *m.cfg.StopLoss,
			"side":  string(m.cfg.Side),
		})
	}

	renderAssessment(m.out, assessment, fxRate, m.cfg.QuoteCurrency, m.cfg.DisplayCurrency, time.Now().UTC())

	if _, err := m.journal.Append(ctx, assessment); err != nil {
		m.logger.Warn(ctx, "Failed to journal assessment", map[string]interface{}{
			"symbol": m.cfg.Symbol,
			"error":  err.Error(),
		})
	}
}
