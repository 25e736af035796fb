package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveRiskSizer/config"
	"liveRiskSizer/internal/adapters/logger"
	"liveRiskSizer/internal/domain"
	"liveRiskSizer/internal/ports"
)

// Mock implementations

type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockPriceSource struct {
	price   float64
	err     error
	pingErr error
	calls   int
}

func (m *mockPriceSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	m.calls++
	return m.price, m.err
}

func (m *mockPriceSource) Ping(ctx context.Context) error { return m.pingErr }

type mockFXSource struct {
	rate float64
	err  error
}

func (m *mockFXSource) Rate(ctx context.Context, base, quote string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if base == quote {
		return 1.0, nil
	}
	return m.rate, nil
}

type mockJournal struct {
	appended  []*domain.RiskAssessment
	appendErr error
}

func (m *mockJournal) Append(ctx context.Context, a *domain.RiskAssessment) (string, error) {
	if m.appendErr != nil {
		return "", m.appendErr
	}
	m.appended = append(m.appended, a)
	return "01TESTULID", nil
}

func (m *mockJournal) Recent(ctx context.Context, symbol string, limit int) ([]*ports.JournalEntry, error) {
	return nil, nil
}

func floatPtr(v float64) *float64 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		Exchange:        "binance",
		Symbol:          "BTC/USDT",
		Equity:          10000,
		Leverage:        10,
		EntryPrice:      50000,
		Side:            domain.SideLong,
		StopLoss:        floatPtr(49000),
		RiskFraction:    0.02,
		RefreshInterval: 10 * time.Millisecond,
		QuoteCurrency:   "USD",
		DisplayCurrency: "USD",
		DBPath:          "./data/test.db",
		LogLevel:        logger.LevelInfo,
	}
}

func newTestMonitor(t *testing.T, cfg *config.Config, prices *mockPriceSource, fx *mockFXSource, journal *mockJournal) (*Monitor, *mockLogger, *bytes.Buffer) {
	t.Helper()
	log := &mockLogger{}
	out := &bytes.Buffer{}
	m, err := NewMonitor(cfg, log, prices, fx, journal, out)
	require.NoError(t, err)
	return m, log, out
}

func TestNewMonitor_RequiresDependencies(t *testing.T) {
	cfg := testConfig()
	_, err := NewMonitor(cfg, nil, &mockPriceSource{}, &mockFXSource{}, &mockJournal{}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewMonitor(nil, &mockLogger{}, &mockPriceSource{}, &mockFXSource{}, &mockJournal{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewMonitor_ValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Leverage = 0
	_, err := NewMonitor(cfg, &mockLogger{}, &mockPriceSource{}, &mockFXSource{}, &mockJournal{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "LEVERAGE")
}

func TestEvaluateCycle_RendersAndJournals(t *testing.T) {
	prices := &mockPriceSource{price: 50100}
	fx := &mockFXSource{rate: 1.0}
	journal := &mockJournal{}
	m, _, out := newTestMonitor(t, testConfig(), prices, fx, journal)

	m.evaluateCycle(context.Background())

	display := out.String()
	assert.Contains(t, display, "Liquidation Price (approx): 45,000.00")
	assert.Contains(t, display, "Per-Unit Risk to Stop: 1,000.00")
	assert.Contains(t, display, "Units by Risk (<= 2.0% equity): 0.2000")
	assert.Contains(t, display, "Margin per Unit: 5,000.00")
	assert.Contains(t, display, "Max Units by Margin: 2.0000")
	assert.Contains(t, display, "Recommended Units: 0.2000")
	assert.Contains(t, display, "Recommended Margin Capital: 1,000.00")

	require.Len(t, journal.appended, 1)
	assert.InDelta(t, 0.2, journal.appended[0].RecommendedUnits, 1e-9)
}

func TestEvaluateCycle_SkipsWhenPriceUnavailable(t *testing.T) {
	prices := &mockPriceSource{err: ports.ErrPriceUnavailable}
	journal := &mockJournal{}
	m, log, out := newTestMonitor(t, testConfig(), prices, &mockFXSource{rate: 1.0}, journal)

	m.evaluateCycle(context.Background())

	assert.Empty(t, out.String(), "nothing should render without a live price")
	assert.Empty(t, journal.appended, "nothing should be journaled without a live price")
	assert.NotEmpty(t, log.warnMsgs)
}

func TestEvaluateCycle_FXFailureDegradesToNeutralRate(t *testing.T) {
	prices := &mockPriceSource{price: 50100}
	fx := &mockFXSource{err: errors.New("fx api down")}
	cfg := testConfig()
	cfg.DisplayCurrency = "EUR"
	m, log, out := newTestMonitor(t, cfg, prices, fx, &mockJournal{})

	m.evaluateCycle(context.Background())

	assert.Contains(t, out.String(), "FX(USD->EUR): 1.0000")
	assert.NotEmpty(t, log.warnMsgs)
}

func TestEvaluateCycle_AppliesFXRateToDisplayFigures(t *testing.T) {
	prices := &mockPriceSource{price: 50100}
	fx := &mockFXSource{rate: 0.5}
	cfg := testConfig()
	cfg.DisplayCurrency = "EUR"
	m, _, out := newTestMonitor(t, cfg, prices, fx, &mockJournal{})

	m.evaluateCycle(context.Background())

	display := out.String()
	assert.Contains(t, display, "Equity: 5,000.00 EUR")
	assert.Contains(t, display, "Margin per Unit: 5,000.00  (2,500.00 EUR)")
	// The sizing math itself stays in the quote currency.
	assert.Contains(t, display, "Recommended Margin Capital: 1,000.00 (500.00 EUR)")
}

func TestEvaluateCycle_LiquidationOverrideRendersZero(t *testing.T) {
	prices := &mockPriceSource{price: 44000} // below the 45,000 liquidation boundary
	m, _, out := newTestMonitor(t, testConfig(), prices, &mockFXSource{rate: 1.0}, &mockJournal{})

	m.evaluateCycle(context.Background())

	display := out.String()
	assert.Contains(t, display, "Recommended Units: 0.0000")
	assert.Contains(t, display, "Recommended Margin Capital: 0.00")
}

func TestEvaluateCycle_WarnsOnceForMisplacedStop(t *testing.T) {
	cfg := testConfig()
	cfg.StopLoss = floatPtr(52000) // above entry on a long
	prices := &mockPriceSource{price: 50100}
	m, log, out := newTestMonitor(t, cfg, prices, &mockFXSource{rate: 1.0}, &mockJournal{})

	m.evaluateCycle(context.Background())
	m.evaluateCycle(context.Background())

	warns := 0
	for _, msg := range log.warnMsgs {
		if msg == "Stop loss is on the wrong side of the entry; it contributes no risk cap and sizing is margin-only" {
			warns++
		}
	}
	assert.Equal(t, 1, warns, "misplaced-stop warning should be logged once per session")
	assert.Contains(t, out.String(), "WARNING: stop is on the wrong side of entry")
	// Sizing falls back to the margin cap.
	assert.Contains(t, out.String(), "Recommended Units: 2.0000")
}

func TestEvaluateCycle_JournalFailureIsNotFatal(t *testing.T) {
	prices := &mockPriceSource{price: 50100}
	journal := &mockJournal{appendErr: ports.ErrAppendFailed}
	m, log, out := newTestMonitor(t, testConfig(), prices, &mockFXSource{rate: 1.0}, journal)

	m.evaluateCycle(context.Background())

	assert.Contains(t, out.String(), "Recommended Units")
	assert.NotEmpty(t, log.warnMsgs)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	prices := &mockPriceSource{price: 50100}
	m, _, _ := newTestMonitor(t, testConfig(), prices, &mockFXSource{rate: 1.0}, &mockJournal{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Let a few cycles elapse, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
	assert.GreaterOrEqual(t, prices.calls, 1)
}

func TestRun_FailsWhenPingFails(t *testing.T) {
	prices := &mockPriceSource{pingErr: ports.ErrConnectionFailed}
	m, _, _ := newTestMonitor(t, testConfig(), prices, &mockFXSource{rate: 1.0}, &mockJournal{})

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)
}
