package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"liveRiskSizer/config"
	"liveRiskSizer/internal/adapters/logger"
	"liveRiskSizer/internal/adapters/sqlite"
	"liveRiskSizer/internal/utils"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent journaled assessments",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.String("db", "", "path to the assessment journal database")
	f.String("symbol", "", "filter by trading symbol (empty matches all)")
	f.Int("limit", 20, "maximum number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	dbPath := cfg.DBPath
	if f.Changed("db") {
		dbPath, _ = f.GetString("db")
	}
	symbol, _ := f.GetString("symbol")
	limit, _ := f.GetInt("limit")

	appLogger := logger.NewStdLogger(logger.LevelWarn)
	journal, err := sqlite.NewJournal(sqlite.Config{DBPath: dbPath, Logger: appLogger})
	if err != nil {
		return fmt.Errorf("failed to open assessment journal: %w", err)
	}
	defer journal.Close()

	entries, err := journal.Recent(context.Background(), symbol, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No journaled assessments found.")
		return nil
	}

	w := cmd.OutOrStdout()
	for _, e := range entries {
		a := e.Assessment
		stop := "-"
		if a.StopLoss != nil {
			stop = utils.FormatAmount(*a.StopLoss, 2)
		}
		fmt.Fprintf(w, "%s  %s  %-10s %-5s live=%s entry=%s stop=%s liq=%s units=%s margin=%s\n",
			e.ID,
			e.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
			a.Symbol,
			a.Side,
			utils.FormatAmount(a.LivePrice, 2),
			utils.FormatAmount(a.EntryPrice, 2),
			stop,
			utils.FormatAmount(a.LiquidationPrice, 2),
			utils.FormatAmount(a.RecommendedUnits, 4),
			utils.FormatAmount(a.RecommendedMarginCapital, 2))
	}
	return nil
}
