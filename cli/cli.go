package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"liveRiskSizer/config"
	"liveRiskSizer/internal/adapters/binanceclient"
	"liveRiskSizer/internal/adapters/fxclient"
	"liveRiskSizer/internal/adapters/logger"
	"liveRiskSizer/internal/adapters/sqlite"
	"liveRiskSizer/internal/app"
	"liveRiskSizer/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "liverisk",
	Short: "Live leveraged-position risk and sizing monitor",
	Long: `liverisk sizes a leveraged position against the live market price and a
risk budget: given account equity, leverage, entry price, side, and an
optional stop loss, it refreshes the liquidation price, margin requirements,
and the recommended unit count every interval.

Flags override the corresponding environment variables (.env supported).`,
	SilenceUsage: true,
	RunE:         runMonitor,
}

func init() {
	f := rootCmd.Flags()
	f.String("exchange", "", "exchange id (default binance)")
	f.String("symbol", "", "trading symbol, e.g. BTC/USDT")
	f.Float64("equity", 0, "account equity in the quote currency")
	f.Float64("leverage", 0, "leverage multiplier, e.g. 75")
	f.Float64("entry", 0, "planned entry price")
	f.String("side", "", "position side: long or short")
	f.Float64("stop", 0, "optional stop loss price")
	f.Float64("risk", 0, "risk fraction of equity (0.02 = 2%)")
	f.Duration("interval", 0, "refresh interval, e.g. 2s")
	f.String("quote-currency", "", "equity base currency (default USD)")
	f.String("display-currency", "", "convert displayed figures to this currency (default USD)")
	f.String("db", "", "path to the assessment journal database")
	f.Bool("testnet", false, "use the exchange testnet")
	f.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(historyCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags overrides environment-sourced configuration with any flags the
// user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("exchange") {
		cfg.Exchange, _ = f.GetString("exchange")
	}
	if f.Changed("symbol") {
		cfg.Symbol, _ = f.GetString("symbol")
	}
	if f.Changed("equity") {
		cfg.Equity, _ = f.GetFloat64("equity")
	}
	if f.Changed("leverage") {
		cfg.Leverage, _ = f.GetFloat64("leverage")
	}
	if f.Changed("entry") {
		cfg.EntryPrice, _ = f.GetFloat64("entry")
	}
	if f.Changed("side") {
		sideStr, _ := f.GetString("side")
		side, err := domain.ParseSide(sideStr)
		if err != nil {
			return err
		}
		cfg.Side = side
	}
	if f.Changed("stop") {
		stop, _ := f.GetFloat64("stop")
		cfg.StopLoss = &stop
	}
	if f.Changed("risk") {
		cfg.RiskFraction, _ = f.GetFloat64("risk")
	}
	if f.Changed("interval") {
		cfg.RefreshInterval, _ = f.GetDuration("interval")
	}
	if f.Changed("quote-currency") {
		cfg.QuoteCurrency, _ = f.GetString("quote-currency")
	}
	if f.Changed("display-currency") {
		cfg.DisplayCurrency, _ = f.GetString("display-currency")
	}
	if f.Changed("db") {
		cfg.DBPath, _ = f.GetString("db")
	}
	if f.Changed("testnet") {
		cfg.IsTestnet, _ = f.GetBool("testnet")
	}
	if f.Changed("log-level") {
		levelStr, _ := f.GetString("log-level")
		cfg.LogLevel = logger.ParseLevel(levelStr)
	}
	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	prices, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize price source: %w", err)
	}

	fx, err := fxclient.New(fxclient.Config{
		Endpoint: cfg.FXEndpoint,
		Logger:   appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize FX source: %w", err)
	}

	journal, err := sqlite.NewJournal(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize assessment journal: %w", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing assessment journal")
		}
	}()

	monitor, err := app.NewMonitor(cfg, appLogger, prices, fx, journal, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to initialize monitor: %w", err)
	}

	return monitor.Run(ctx)
}
