package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config describes an organization, the orders to replay through it and
// the ambient settings for a run.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Funds   []FundConfig  `json:"funds" yaml:"funds"`
	Orders  []OrderConfig `json:"orders,omitempty" yaml:"orders,omitempty"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

type AccountConfig struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
}

type FundConfig struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Balance    decimal.Decimal   `json:"balance" yaml:"balance"`
	Rules      *RulesConfig      `json:"rules,omitempty" yaml:"rules,omitempty"`
	Portfolios []PortfolioConfig `json:"portfolios,omitempty" yaml:"portfolios,omitempty"`
}

type PortfolioConfig struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	Balance    decimal.Decimal  `json:"balance" yaml:"balance"`
	Rules      *RulesConfig     `json:"rules,omitempty" yaml:"rules,omitempty"`
	Strategies []StrategyConfig `json:"strategies,omitempty" yaml:"strategies,omitempty"`
}

type StrategyConfig struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
}

// OrderConfig is one order to replay. Exactly one of Direction (a
// directional trade) or Action (BUY/SELL routed against the position)
// is set.
type OrderConfig struct {
	Strategy   string           `json:"strategy" yaml:"strategy"`
	Symbol     string           `json:"symbol" yaml:"symbol"`
	Direction  string           `json:"direction,omitempty" yaml:"direction,omitempty"`
	Action     string           `json:"action,omitempty" yaml:"action,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity" yaml:"quantity"`
	OrderType  string           `json:"order_type,omitempty" yaml:"order_type,omitempty"`
	Price      decimal.Decimal  `json:"price" yaml:"price"`
	StopPrice  *decimal.Decimal `json:"stop_price,omitempty" yaml:"stop_price,omitempty"`
	Commission decimal.Decimal  `json:"commission" yaml:"commission"`
}

// JournalConfig selects where filled trades are written.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none" or "csv"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // console or json
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		*cfg = Config{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Journal.Type == "" {
		c.Journal.Type = "none"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	for i := range c.Orders {
		if c.Orders[i].OrderType == "" {
			c.Orders[i].OrderType = "MARKET"
		}
	}
}

// Default returns a small complete organization with a few orders.
func Default() *Config {
	shortsOff := false
	tenPct := decimal.NewFromInt(10)
	twentyPct := decimal.NewFromInt(20)

	return &Config{
		Account: AccountConfig{ID: "ACC-001", Name: "Main Account", Balance: decimal.NewFromInt(1_000_000)},
		Funds: []FundConfig{{
			ID:      "FUND-001",
			Name:    "Growth Fund",
			Balance: decimal.NewFromInt(500_000),
			Rules: &RulesConfig{
				MaxPositionSizePct: &twentyPct,
				RestrictedSymbols:  []string{"GME"},
			},
			Portfolios: []PortfolioConfig{
				{
					ID:      "PF-TECH",
					Name:    "Tech",
					Balance: decimal.NewFromInt(200_000),
					Rules:   &RulesConfig{MaxSingleTradePct: &tenPct},
					Strategies: []StrategyConfig{
						{ID: "ST-MOMO", Name: "Momentum", Balance: decimal.NewFromInt(100_000)},
						{ID: "ST-MEANREV", Name: "Mean Reversion", Balance: decimal.NewFromInt(50_000)},
					},
				},
				{
					ID:      "PF-INCOME",
					Name:    "Income",
					Balance: decimal.NewFromInt(100_000),
					Rules:   &RulesConfig{AllowShortSelling: &shortsOff},
					Strategies: []StrategyConfig{
						{ID: "ST-DIV", Name: "Dividend", Balance: decimal.NewFromInt(80_000)},
					},
				},
			},
		}},
		Orders: []OrderConfig{
			{Strategy: "ST-MOMO", Symbol: "AAPL", Direction: "BUY", Quantity: decimal.NewFromInt(100), OrderType: "MARKET", Price: decimal.NewFromInt(150)},
			{Strategy: "ST-MOMO", Symbol: "AAPL", Direction: "SELL", Quantity: decimal.NewFromInt(50), OrderType: "LIMIT", Price: decimal.NewFromInt(160)},
			{Strategy: "ST-MEANREV", Symbol: "TSLA", Action: "SELL", Quantity: decimal.NewFromInt(20), OrderType: "MARKET", Price: decimal.NewFromInt(250)},
			{Strategy: "ST-DIV", Symbol: "KO", Direction: "BUY", Quantity: decimal.NewFromInt(300), OrderType: "MARKET", Price: decimal.NewFromInt(60)},
			{Strategy: "ST-DIV", Symbol: "KO", Direction: "SELL_SHORT", Quantity: decimal.NewFromInt(10), OrderType: "MARKET", Price: decimal.NewFromInt(60)},
		},
		Journal: JournalConfig{Type: "none"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}
