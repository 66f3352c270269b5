package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/retailboard/internal/config"
	"github.com/KaramelBytes/retailboard/internal/logging"
	"github.com/KaramelBytes/retailboard/internal/source"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Retailboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "source_kind: %s\n", cfg.SourceKind)
		switch cfg.SourceKind {
		case "csv":
			fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
			showSeparators(out)
		case "xlsx":
			fmt.Fprintf(out, "workbook_path: %s\n", cfg.WorkbookPath)
			showSeparators(out)
		case "sql":
			fmt.Fprintf(out, "db_driver: %s\n", cfg.DBDriver)
			if cfg.DBDSN != "" {
				fmt.Fprintf(out, "db_dsn: %s\n", mask(cfg.DBDSN))
			} else {
				fmt.Fprintf(out, "db_host: %s\n", cfg.DBHost)
				if cfg.DBPort > 0 {
					fmt.Fprintf(out, "db_port: %d\n", cfg.DBPort)
				}
				fmt.Fprintf(out, "db_user: %s\n", cfg.DBUser)
				fmt.Fprintf(out, "db_password: %s\n", mask(cfg.DBPassword))
				fmt.Fprintf(out, "db_name: %s\n", cfg.DBName)
			}
			fmt.Fprintf(out, "query_timeout_sec: %d\n", cfg.QueryTimeoutSec)
		}
		fmt.Fprintf(out, "top_customers: %d\n", cfg.TopCustomers)
		fmt.Fprintf(out, "state_top_k: %d\n", cfg.StateTopK)
		fmt.Fprintf(out, "price_tier_buckets: %d\n", cfg.PriceTierBuckets)
		fmt.Fprintf(out, "stock_tier_buckets: %d\n", cfg.StockTierBuckets)
		fmt.Fprintf(out, "product_price_buckets: %d\n", cfg.ProductPriceBuckets)
		fmt.Fprintf(out, "moving_preceding: %d\n", cfg.MovingPreceding)
		fmt.Fprintf(out, "moving_following: %d\n", cfg.MovingFollowing)
		fmt.Fprintf(out, "pareto_threshold: %.2f\n", cfg.ParetoThreshold)
		fmt.Fprintf(out, "iqr_multiplier: %.2f\n", cfg.IQRMultiplier)
		fmt.Fprintf(out, "parallelism: %d\n", cfg.Parallelism)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], strings.TrimSpace(args[1])
		// edit the file as stored, without this call's flag or env overrides
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	strs := map[string]*string{
		"data_dir":      &c.DataDir,
		"workbook_path": &c.WorkbookPath,
		"db_host":       &c.DBHost,
		"db_user":       &c.DBUser,
		"db_password":   &c.DBPassword,
		"db_name":       &c.DBName,
		"db_dsn":        &c.DBDSN,
	}
	ints := map[string]*int{
		"db_port":               &c.DBPort,
		"query_timeout_sec":     &c.QueryTimeoutSec,
		"top_customers":         &c.TopCustomers,
		"state_top_k":           &c.StateTopK,
		"price_tier_buckets":    &c.PriceTierBuckets,
		"stock_tier_buckets":    &c.StockTierBuckets,
		"product_price_buckets": &c.ProductPriceBuckets,
		"moving_preceding":      &c.MovingPreceding,
		"moving_following":      &c.MovingFollowing,
		"parallelism":           &c.Parallelism,
	}
	floats := map[string]*float64{
		"pareto_threshold": &c.ParetoThreshold,
		"iqr_multiplier":   &c.IQRMultiplier,
	}
	if p, ok := strs[key]; ok {
		*p = val
		return nil
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	if p, ok := floats[key]; ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		*p = f
		return nil
	}
	switch key {
	case "source_kind":
		v := strings.ToLower(val)
		for _, k := range source.Kinds() {
			if k == v {
				c.SourceKind = v
				return nil
			}
		}
		return fmt.Errorf("invalid source_kind: %s (use %s)", val, strings.Join(source.Kinds(), "|"))
	case "db_driver":
		switch v := strings.ToLower(val); v {
		case "mysql", "postgres", "sqlite":
			c.DBDriver = v
		case "postgresql", "pg":
			c.DBDriver = "postgres"
		default:
			return fmt.Errorf("invalid db_driver: %s (use mysql|postgres|sqlite)", val)
		}
	case "csv_decimal":
		if _, err := source.ParseSeparators(val, c.CSVThousands); err != nil {
			return fmt.Errorf("invalid csv_decimal: %w", err)
		}
		c.CSVDecimal = strings.ToLower(val)
	case "csv_thousands":
		if _, err := source.ParseSeparators(c.CSVDecimal, val); err != nil {
			return fmt.Errorf("invalid csv_thousands: %w", err)
		}
		c.CSVThousands = strings.ToLower(val)
	case "log_level":
		c.LogLevel = logging.ParseLevel(val).String()
	case "log_format":
		v := strings.ToLower(val)
		if v != "text" && v != "json" {
			return fmt.Errorf("invalid log_format: %s (use text|json)", val)
		}
		c.LogFormat = v
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func showSeparators(out io.Writer) {
	auto := func(s string) string {
		if s == "" {
			return "auto"
		}
		return s
	}
	fmt.Fprintf(out, "csv_decimal: %s\n", auto(cfg.CSVDecimal))
	fmt.Fprintf(out, "csv_thousands: %s\n", auto(cfg.CSVThousands))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
