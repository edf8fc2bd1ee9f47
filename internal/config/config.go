// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// APIVersion is the compiled-in wire protocol version the Session
// Controller requires the venue's "info" frame to match.
const APIVersion = 2

// ClientIDDateLayout is the UTC day format a client_id is unique within.
const ClientIDDateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Venue     VenueConfig     `mapstructure:"venue"`
	Trading   TradingConfig   `mapstructure:"trading"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// VenueConfig holds the exchange connection and credentials.
type VenueConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	APIKey         string        `mapstructure:"api_key"`
	APISecret      string        `mapstructure:"api_secret"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// TradingConfig holds the solver and trading-loop parameters enumerated
// by spec.md §6, plus the secondary constants it names.
type TradingConfig struct {
	Currency             string            `mapstructure:"currency"` // base currency c0
	MaxAmount            float64           `mapstructure:"max_amount"`
	MinPathLength        int               `mapstructure:"min_path_length"`
	MaxPathLength        int               `mapstructure:"max_path_length"`
	MinPathProfitUSD     float64           `mapstructure:"min_path_profit_usd"`
	MinTradingIntervalMs int               `mapstructure:"min_trading_interval_ms"`
	SolverTimeoutMs      int               `mapstructure:"solver_timeout_ms"`
	ChainStepTimeoutMs   int               `mapstructure:"chain_step_timeout_ms"`
	TakerFeeBps          float64           `mapstructure:"taker_fee_bps"`
	SymbolUniverse       []string          `mapstructure:"symbol_universe"`
	MaxVolumeCurrencies  []string          `mapstructure:"max_volume_currencies"`
	MaxVolumePairs       []string          `mapstructure:"max_volume_pairs"`
	MinOrderSizes        map[string]string `mapstructure:"min_order_sizes"` // currency -> decimal string, "OTHER" is the default
}

// MaxAmountDecimal returns MaxAmount as a decimal.Decimal (boundary
// conversion; the solver itself works in internal/money.Amount).
func (c *TradingConfig) MaxAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxAmount)
}

// MinPathProfitUSDDecimal returns MinPathProfitUSD as decimal.Decimal.
func (c *TradingConfig) MinPathProfitUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinPathProfitUSD)
}

// TakerFee returns the taker fee as a fraction (e.g. 0.002 for 20 bps).
func (c *TradingConfig) TakerFee() decimal.Decimal {
	return decimal.NewFromFloat(c.TakerFeeBps).Div(decimal.NewFromInt(10000))
}

// MinOrderSize looks up the minimum admissible order size for currency,
// falling back to the "OTHER" entry.
func (c *TradingConfig) MinOrderSize(currency string) (decimal.Decimal, error) {
	raw, ok := c.MinOrderSizes[currency]
	if !ok {
		raw, ok = c.MinOrderSizes["OTHER"]
		if !ok {
			return decimal.Zero, fmt.Errorf("no min order size configured for %q or OTHER", currency)
		}
	}
	return decimal.NewFromString(raw)
}

// MinTradingInterval returns MinTradingIntervalMs as a time.Duration.
func (c *TradingConfig) MinTradingInterval() time.Duration {
	return time.Duration(c.MinTradingIntervalMs) * time.Millisecond
}

// SolverTimeout returns SolverTimeoutMs as a time.Duration (T_max).
func (c *TradingConfig) SolverTimeout() time.Duration {
	return time.Duration(c.SolverTimeoutMs) * time.Millisecond
}

// ChainStepTimeout returns ChainStepTimeoutMs as a time.Duration (T_step).
func (c *TradingConfig) ChainStepTimeout() time.Duration {
	return time.Duration(c.ChainStepTimeoutMs) * time.Millisecond
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TRIARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "TRIARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TRIARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TRIARB_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("venue.websocket_url", "TRIARB_VENUE_WS_URL")
	v.BindEnv("venue.api_key", "TRIARB_API_KEY", "API_KEY")
	v.BindEnv("venue.api_secret", "TRIARB_API_SECRET", "API_SECRET")

	v.BindEnv("trading.currency", "TRIARB_CURRENCY")
	v.BindEnv("trading.max_amount", "TRIARB_MAX_AMOUNT")
	v.BindEnv("trading.min_path_length", "TRIARB_MIN_PATH_LENGTH")
	v.BindEnv("trading.max_path_length", "TRIARB_MAX_PATH_LENGTH")
	v.BindEnv("trading.min_path_profit_usd", "TRIARB_MIN_PATH_PROFIT_USD")

	v.BindEnv("telemetry.enabled", "TRIARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "TRIARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "TRIARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "triarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("venue.websocket_url", "wss://api-pub.bitfinex.com/ws/2")
	v.SetDefault("venue.max_reconnects", 0) // infinite
	v.SetDefault("venue.initial_backoff", "1s")
	v.SetDefault("venue.max_backoff", "30s")

	v.SetDefault("trading.currency", "USD")
	v.SetDefault("trading.max_amount", 100.0)
	v.SetDefault("trading.min_path_length", 3)
	v.SetDefault("trading.max_path_length", 4)
	v.SetDefault("trading.min_path_profit_usd", 1.0)
	v.SetDefault("trading.min_trading_interval_ms", 500)
	v.SetDefault("trading.solver_timeout_ms", 850)
	v.SetDefault("trading.chain_step_timeout_ms", 15000)
	v.SetDefault("trading.taker_fee_bps", 20.0)
	v.SetDefault("trading.symbol_universe", []string{
		"tBTCUSD", "tETHUSD", "tETHBTC", "tXRPUSD", "tXRPBTC",
	})
	v.SetDefault("trading.max_volume_currencies", []string{"USD", "BTC", "ETH", "XRP"})
	v.SetDefault("trading.max_volume_pairs", []string{"BTCUSD", "ETHUSD", "ETHBTC", "XRPUSD", "XRPBTC"})
	v.SetDefault("trading.min_order_sizes", map[string]string{
		"BTC":   "0.0002",
		"ETH":   "0.004",
		"XRP":   "9",
		"USD":   "6",
		"OTHER": "1",
	})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "triarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Venue.WebSocketURL == "" {
		return fmt.Errorf("venue.websocket_url is required")
	}
	if c.Venue.APIKey == "" || c.Venue.APISecret == "" {
		return fmt.Errorf("venue.api_key and venue.api_secret are required")
	}
	if len(c.Trading.SymbolUniverse) == 0 {
		return fmt.Errorf("trading.symbol_universe cannot be empty")
	}
	if c.Trading.MinPathLength < 2 || c.Trading.MaxPathLength < c.Trading.MinPathLength {
		return fmt.Errorf("invalid trading.min_path_length/max_path_length: %d/%d",
			c.Trading.MinPathLength, c.Trading.MaxPathLength)
	}
	return nil
}
