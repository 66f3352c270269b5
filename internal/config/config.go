package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/retailboard/internal/report"
	"github.com/KaramelBytes/retailboard/internal/source"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Data source
	SourceKind      string `mapstructure:"source_kind" yaml:"source_kind"`
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir"`
	WorkbookPath    string `mapstructure:"workbook_path" yaml:"workbook_path"`
	CSVDecimal      string `mapstructure:"csv_decimal" yaml:"csv_decimal"`
	CSVThousands    string `mapstructure:"csv_thousands" yaml:"csv_thousands"`
	DBDriver        string `mapstructure:"db_driver" yaml:"db_driver"`
	DBHost          string `mapstructure:"db_host" yaml:"db_host"`
	DBPort          int    `mapstructure:"db_port" yaml:"db_port"`
	DBUser          string `mapstructure:"db_user" yaml:"db_user"`
	DBPassword      string `mapstructure:"db_password" yaml:"db_password"`
	DBName          string `mapstructure:"db_name" yaml:"db_name"`
	DBDSN           string `mapstructure:"db_dsn" yaml:"db_dsn"`
	QueryTimeoutSec int    `mapstructure:"query_timeout_sec" yaml:"query_timeout_sec"`

	// Report parameters
	TopCustomers        int     `mapstructure:"top_customers" yaml:"top_customers"`
	StateTopK           int     `mapstructure:"state_top_k" yaml:"state_top_k"`
	PriceTierBuckets    int     `mapstructure:"price_tier_buckets" yaml:"price_tier_buckets"`
	StockTierBuckets    int     `mapstructure:"stock_tier_buckets" yaml:"stock_tier_buckets"`
	ProductPriceBuckets int     `mapstructure:"product_price_buckets" yaml:"product_price_buckets"`
	MovingPreceding     int     `mapstructure:"moving_preceding" yaml:"moving_preceding"`
	MovingFollowing     int     `mapstructure:"moving_following" yaml:"moving_following"`
	ParetoThreshold     float64 `mapstructure:"pareto_threshold" yaml:"pareto_threshold"`
	IQRMultiplier       float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`

	// Batch and logging
	Parallelism int    `mapstructure:"parallelism" yaml:"parallelism"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.retailboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".retailboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.retailboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// the file may hold a database password
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	p := report.DefaultParams()
	v.SetDefault("source_kind", "csv")
	v.SetDefault("data_dir", ".")
	v.SetDefault("workbook_path", "")
	v.SetDefault("csv_decimal", "")
	v.SetDefault("csv_thousands", "")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", 0)
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "")
	v.SetDefault("db_dsn", "")
	v.SetDefault("query_timeout_sec", int(source.DefaultQueryTimeout/time.Second))

	v.SetDefault("top_customers", p.TopCustomers)
	v.SetDefault("state_top_k", p.StateTopK)
	v.SetDefault("price_tier_buckets", p.PriceTierBuckets)
	v.SetDefault("stock_tier_buckets", p.StockTierBuckets)
	v.SetDefault("product_price_buckets", p.ProductPriceBuckets)
	v.SetDefault("moving_preceding", p.MovingPreceding)
	v.SetDefault("moving_following", p.MovingFollowing)
	v.SetDefault("pareto_threshold", p.ParetoThreshold.InexactFloat64())
	v.SetDefault("iqr_multiplier", p.IQRMultiplier.InexactFloat64())

	v.SetDefault("parallelism", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads the config file over defaults and ignores the environment. It
// is the base for edits that are saved back to disk.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, env bool) (*Global, error) {
	v := viper.New()
	if env {
		v.SetEnvPrefix("RETAILBOARD")
		v.AutomaticEnv()
	}
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &missing) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// SourceOptions maps the data source keys onto loader options.
func (c *Global) SourceOptions() source.Options {
	return source.Options{
		Kind:               c.SourceKind,
		DataDir:            c.DataDir,
		WorkbookPath:       c.WorkbookPath,
		DecimalSeparator:   c.CSVDecimal,
		ThousandsSeparator: c.CSVThousands,
		Driver:             c.DBDriver,
		Host:               c.DBHost,
		Port:               c.DBPort,
		User:               c.DBUser,
		Password:           c.DBPassword,
		Database:           c.DBName,
		DSN:                c.DBDSN,
		QueryTimeout:       time.Duration(c.QueryTimeoutSec) * time.Second,
	}
}

// Params maps the report keys onto report parameters. Values are validated by
// the reports that use them.
func (c *Global) Params() report.Params {
	return report.Params{
		TopCustomers:        c.TopCustomers,
		StateTopK:           c.StateTopK,
		PriceTierBuckets:    c.PriceTierBuckets,
		StockTierBuckets:    c.StockTierBuckets,
		ProductPriceBuckets: c.ProductPriceBuckets,
		MovingPreceding:     c.MovingPreceding,
		MovingFollowing:     c.MovingFollowing,
		ParetoThreshold:     decimal.NewFromFloat(c.ParetoThreshold),
		IQRMultiplier:       decimal.NewFromFloat(c.IQRMultiplier),
	}
}
