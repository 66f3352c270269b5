package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	cfgpkg "github.com/KaramelBytes/retailboard/internal/config"
	"github.com/KaramelBytes/retailboard/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Source/batch flags (override config if set)
	flagSource      string
	flagDataDir     string
	flagWorkbook    string
	flagParallelism int
	flagDecimal     string
	flagThousands   string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
	log    *logrus.Logger
	runID  string
)

var rootCmd = &cobra.Command{
	Use:   "retailboard",
	Short: "Retailboard: ranked, tiered and windowed sales reports from retail data",
	Long: `Retailboard loads orders, order items, products and inventory from a CSV directory,
an XLSX workbook or a SQL database and computes the dashboard reports: rankings,
moving averages, day-over-day deltas, Pareto splits, NTILE tiers and outlier flags.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.retailboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "data source: csv | xlsx | sql (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding <dataset>.csv files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagWorkbook, "workbook", "", "XLSX workbook with one sheet per dataset (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagParallelism, "parallel", 0, "reports built at once by report-all (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator in CSV/XLSX numbers: '.'|'comma' (default auto)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator in CSV/XLSX numbers: ','|'.'|'space' (default auto)")
}

func loadConfig() {
	runID = uuid.NewString()
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		cfg, cfgErr = nil, err
		// Non-fatal: config show/set still work on a broken file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg, cfgErr = c, nil

	f := rootCmd.PersistentFlags()
	if f.Changed("source") && flagSource != "" {
		cfg.SourceKind = flagSource
	}
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
		if !f.Changed("source") {
			cfg.SourceKind = "csv"
		}
	}
	if f.Changed("workbook") && flagWorkbook != "" {
		cfg.WorkbookPath = flagWorkbook
		if !f.Changed("source") {
			cfg.SourceKind = "xlsx"
		}
	}
	if f.Changed("parallel") && flagParallelism > 0 {
		cfg.Parallelism = flagParallelism
	}
	if f.Changed("decimal") {
		cfg.CSVDecimal = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.CSVThousands = flagThousands
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Out: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v, using text logs\n", err)
		l, _ = logging.New(logging.Options{Level: level, Out: os.Stderr})
	}
	log = l
}

// mustConfig returns the loaded configuration or the reason it is missing.
func mustConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("config: %w", cfgErr)
		}
		return nil, fmt.Errorf("config not loaded")
	}
	return cfg, nil
}

// runLog is the logger for the current invocation.
func runLog() *logrus.Entry {
	l := log
	if l == nil {
		l = logrus.StandardLogger()
	}
	return l.WithField("run_id", runID)
}
