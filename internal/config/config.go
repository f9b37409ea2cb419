package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Proxy     string `yaml:"proxy" env:"HTTPS_PROXY"`

	FMP struct {
		BaseURL string        `yaml:"base_url" env:"FMP_BASE_URL"`
		APIKey  string        `yaml:"api_key" env:"FMP_API_KEY"`
		Timeout time.Duration `yaml:"timeout"`
		Retries int           `yaml:"retries"`
	} `yaml:"fmp"`

	Fundamentals struct {
		Symbols  []string `yaml:"symbols" env:"FUNDAMENTALS_SYMBOLS" envSeparator:","`
		FromYear int      `yaml:"from_year"`
		ToYear   int      `yaml:"to_year"`
		Workbook bool     `yaml:"workbook"`
	} `yaml:"fundamentals"`

	Portfolio struct {
		PricesFile   string             `yaml:"prices_file" env:"PRICES_FILE"`
		Tickers      []string           `yaml:"tickers"`
		HistoryRange string             `yaml:"history_range"`
		RiskFreeRate float64            `yaml:"risk_free_rate"`
		Frequency    int                `yaml:"frequency"`
		Views        map[string]float64 `yaml:"views"`
		Tau          float64            `yaml:"tau"`
		RiskAversion float64            `yaml:"risk_aversion"`
		MarketCaps   map[string]float64 `yaml:"market_caps"`
		Workbook     bool               `yaml:"workbook"`
	} `yaml:"portfolio"`

	Schedule struct {
		FundamentalsCron string `yaml:"fundamentals_cron" env:"CRON_FUNDAMENTALS"`
		PortfolioCron    string `yaml:"portfolio_cron" env:"CRON_PORTFOLIO"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`

	Server struct {
		Addr string `yaml:"addr" env:"SERVER_ADDR"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error. Defaults are seeded
// before decoding, so an explicit zero in the file or environment is kept.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	// decoding into a non-nil map would merge with the default view
	if cfg.Portfolio.Views == nil {
		cfg.Portfolio.Views = map[string]float64{"AAPL": 0.10}
	}
	return cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	c := &Config{
		LogLevel:  "info",
		OutputDir: "out",
	}
	c.FMP.BaseURL = "https://financialmodelingprep.com/api/v3"
	c.FMP.Timeout = 30 * time.Second
	c.FMP.Retries = 3
	c.Fundamentals.Symbols = []string{"AAPL"}
	c.Portfolio.PricesFile = "data/stock_prices.csv"
	c.Portfolio.HistoryRange = "5y"
	c.Portfolio.RiskFreeRate = 0.02
	c.Portfolio.Frequency = 252
	c.Portfolio.Tau = 0.05
	c.Portfolio.RiskAversion = 1
	c.Schedule.FundamentalsCron = "0 0 7 * * 1-5"
	c.Schedule.PortfolioCron = "0 30 7 * * 1"
	c.Database.SQLitePath = "data/portfolio_optimizer.db"
	c.Server.Addr = ":8080"
	return c
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.FMP.Retries < 0 {
		return fmt.Errorf("fmp.retries must not be negative")
	}
	if c.Portfolio.Frequency <= 0 {
		return fmt.Errorf("portfolio.frequency must be positive")
	}
	if c.Portfolio.Tau <= 0 {
		return fmt.Errorf("portfolio.tau must be positive")
	}
	if c.Portfolio.RiskAversion <= 0 {
		return fmt.Errorf("portfolio.risk_aversion must be positive")
	}
	if c.Fundamentals.FromYear != 0 && c.Fundamentals.ToYear != 0 && c.Fundamentals.FromYear > c.Fundamentals.ToYear {
		return fmt.Errorf("fundamentals.from_year must not be after to_year")
	}
	return nil
}

// ValidateFMP checks the settings needed to call the financial data API.
func (c *Config) ValidateFMP() error {
	if c.FMP.APIKey == "" {
		return fmt.Errorf("fmp.api_key is required (or set FMP_API_KEY)")
	}
	return nil
}

// ValidateTelegram checks the settings needed to send notifications.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
