package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/asca/")
	v.AddConfigPath("$HOME/.asca")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("ASCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("server.gateway_type", "tcp")
	v.SetDefault("server.listen_address", "0.0.0.0:7050")

	// Detector defaults
	v.SetDefault("detector.brand", "discord")
	v.SetDefault("detector.similarity_threshold", 0.85)
	v.SetDefault("detector.burst_threshold", 5)
	v.SetDefault("detector.burst_window", "10s")

	// Link resolution defaults
	v.SetDefault("resolver.timeout", "8s")
	v.SetDefault("resolver.shorteners", []string{
		"bit.ly",
		"cutt.ly",
		"goo.gl",
		"is.gd",
		"ow.ly",
		"rb.gy",
		"s.id",
		"shorturl.at",
		"t.co",
		"tinyurl.com",
	})

	// Blocklist defaults
	v.SetDefault("blocklist.url", "https://raw.githubusercontent.com/DevSpen/scam-links/master/src/links.txt")
	v.SetDefault("blocklist.refresh_interval", "30m")
	v.SetDefault("blocklist.fetch_timeout", "30s")
	v.SetDefault("blocklist.pending", []string{"gibthub.com"})

	// Reputation defaults
	v.SetDefault("reputation.api_key", "")

	// Punishment defaults
	v.SetDefault("punish.delete_spacing", "5s")

	// Tenant store defaults
	v.SetDefault("tenants.type", "memory")
	v.SetDefault("tenants.sqlite_path", "/data/asca.db")
	v.SetDefault("tenants.mysql_dsn", "user:password@tcp(localhost:3306)/asca")

	// Message cache defaults
	v.SetDefault("msgcache.type", "memory")
	v.SetDefault("msgcache.capacity", 1000)
	v.SetDefault("msgcache.redis_addr", "localhost:6379")
	v.SetDefault("msgcache.redis_password", "")
	v.SetDefault("msgcache.redis_db", 0)
	v.SetDefault("msgcache.ttl", "1h")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_address", ":9090")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Log text hygiene defaults
	v.SetDefault("text.max_reason_size", 512)
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
