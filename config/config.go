package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"liveRiskSizer/internal/adapters/logger"
	"liveRiskSizer/internal/domain"
)

// SupportedExchange is the only price source currently implemented.
const SupportedExchange = "binance"

// Config holds all application configuration. Values come from the
// environment (.env supported) and may be overridden by CLI flags before
// Validate is called.
type Config struct {
	// Exchange / market data
	Exchange  string
	Symbol    string
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Position parameters
	Equity       float64
	Leverage     float64
	EntryPrice   float64
	Side         domain.Side
	StopLoss     *float64 // nil when no stop is supplied
	RiskFraction float64

	// Refresh / display
	RefreshInterval time.Duration
	QuoteCurrency   string
	DisplayCurrency string

	// FX rate service
	FXEndpoint string

	// Journal
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// FromEnv loads configuration from environment variables (.env file
// supported). Parse failures are collected into a single error. Field-level
// validation happens later in Validate, after CLI flag overrides.
func FromEnv() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	cfg.Exchange = getEnv("EXCHANGE", SupportedExchange)
	cfg.Symbol = getEnv("SYMBOL", "BTC/USDT")
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	cfg.Equity, err = getEnvAsFloat("EQUITY", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid EQUITY: %v", err))
	}
	cfg.Leverage, err = getEnvAsFloat("LEVERAGE", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	}
	cfg.EntryPrice, err = getEnvAsFloat("ENTRY_PRICE", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ENTRY_PRICE: %v", err))
	}

	if sideStr := getEnv("SIDE", ""); sideStr != "" {
		cfg.Side, err = domain.ParseSide(sideStr)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid SIDE: %v", err))
		}
	}

	cfg.StopLoss, err = getEnvAsOptionalFloat("STOP_LOSS")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS: %v", err))
	}

	cfg.RiskFraction, err = getEnvAsFloat("RISK_FRACTION", domain.DefaultRiskFraction)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_FRACTION: %v", err))
	}

	cfg.RefreshInterval, err = getEnvAsDuration("REFRESH_INTERVAL", 2*time.Second)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REFRESH_INTERVAL: %v", err))
	}

	cfg.QuoteCurrency = strings.ToUpper(getEnv("QUOTE_CURRENCY", "USD"))
	cfg.DisplayCurrency = strings.ToUpper(getEnv("DISPLAY_CURRENCY", "USD"))
	cfg.FXEndpoint = getEnv("FX_ENDPOINT", "")
	cfg.DBPath = getEnv("DB_PATH", "./data/risk_journal.db")
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration parsing failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable session.
// All problems are collected into a single error.
func (c *Config) Validate() error {
	var errs []string

	if !strings.EqualFold(c.Exchange, SupportedExchange) {
		errs = append(errs, fmt.Sprintf("unsupported exchange %q (only %q is implemented)", c.Exchange, SupportedExchange))
	}
	if strings.TrimSpace(c.Symbol) == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	if c.Equity <= 0 {
		errs = append(errs, "EQUITY must be positive")
	}
	if c.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}
	if c.EntryPrice <= 0 {
		errs = append(errs, "ENTRY_PRICE must be positive")
	}
	if !c.Side.IsValid() {
		errs = append(errs, "SIDE must be long or short")
	}
	if c.StopLoss != nil && *c.StopLoss <= 0 {
		errs = append(errs, "STOP_LOSS must be positive when set")
	}
	if c.RiskFraction < 0 {
		errs = append(errs, "RISK_FRACTION cannot be negative")
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, "REFRESH_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.QuoteCurrency) == "" || strings.TrimSpace(c.DisplayCurrency) == "" {
		errs = append(errs, "QUOTE_CURRENCY and DISPLAY_CURRENCY must be set")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Request builds the immutable position request evaluated each cycle.
func (c *Config) Request() domain.PositionRequest {
	return domain.PositionRequest{
		Symbol:       c.Symbol,
		Equity:       c.Equity,
		EntryPrice:   c.EntryPrice,
		Leverage:     c.Leverage,
		Side:         c.Side,
		StopLoss:     c.StopLoss,
		RiskFraction: c.RiskFraction,
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsOptionalFloat(key string) (*float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return &value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
