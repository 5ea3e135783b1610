package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Market   MarketConfig
	Gemini   GeminiConfig
	History  HistoryConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	BaseURL       string
	Timeout       time.Duration
	DefaultPeriod string
	Watchlist     []string
}

// GeminiConfig holds generative model configuration. An empty APIKey disables
// the model entirely and the service runs on keyword classification alone.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// Enabled reports whether the generative model is configured
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// HistoryConfig selects the interaction log backend: "nocodb", "postgres" or "none"
type HistoryConfig struct {
	Backend      string
	WriteTimeout time.Duration
	NocoDB       NocoDBConfig
}

// NocoDBConfig holds coordinates of the external NocoDB log store
type NocoDBConfig struct {
	URL     string
	Token   string
	TableID string
}

// DatabaseConfig holds database specific configuration for the optional
// Postgres history backend
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds Kafka specific configuration for query-event publishing
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Read from environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.corsOrigins", []string{"*"})

	// Market data defaults
	v.SetDefault("market.baseURL", "https://query1.finance.yahoo.com")
	v.SetDefault("market.timeout", "30s")
	v.SetDefault("market.defaultPeriod", "1mo")
	v.SetDefault("market.watchlist", defaultWatchlist)

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", "15s")
	v.SetDefault("gemini.temperature", 0.3)

	// History defaults
	v.SetDefault("history.backend", "none")
	v.SetDefault("history.writeTimeout", "5s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "stock-query-events")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// defaultWatchlist is the fixed symbol set scanned by the market-overview
// endpoint when no watchlist is configured
var defaultWatchlist = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "BRK-B", "JPM", "V",
	"UNH", "JNJ", "WMT", "XOM", "PG",
	"MA", "HD", "CVX", "KO", "PEP",
	"COST", "AVGO", "MRK", "ADBE", "NFLX",
}
