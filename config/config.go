package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/shiva/rsvp/internal/rsvperr"
)

// Config holds all configuration for the application.
type Config struct {
	DB     DBConfig     `mapstructure:"db"`
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	MaxConnects int32  `mapstructure:"max_connects"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// CacheConfig holds Redis connection settings for the read-through
// reservation cache.
type CacheConfig struct {
	Addr       string `mapstructure:"addr"`
	DB         int    `mapstructure:"db"`
	PoolSize   int    `mapstructure:"pool_size"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// URL returns the PostgreSQL connection string for this database.
func (d DBConfig) URL() string {
	if d.Password == "" {
		return fmt.Sprintf("postgres://%s@%s:%d/%s", d.User, d.Host, d.Port, d.DBName)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// ServerURL is the same connection string pointed at the "postgres"
// maintenance database instead of DBName, used by the test harness to create
// and drop per-test databases.
func (d DBConfig) ServerURL() string {
	if d.Password == "" {
		return fmt.Sprintf("postgres://%s@%s:%d/postgres", d.User, d.Host, d.Port)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres", d.User, d.Password, d.Host, d.Port)
}

// Addr returns the HTTP listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// candidatePaths returns the config file search order: the RESERVATIONS_CONFIG
// env var, then ./reservation.yaml, ~/.config/reservation.yaml and
// /etc/reservation.yaml, in that order. The first readable path wins.
func candidatePaths() []string {
	var paths []string
	if p := os.Getenv("RESERVATIONS_CONFIG"); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, "reservation.yaml")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reservation.yaml"))
	}
	paths = append(paths, filepath.Join("/etc", "reservation.yaml"))
	return paths
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("db.max_connects", 5)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.pool_size", 20)
	v.SetDefault("cache.ttl_seconds", 30)
	return v
}

// Load resolves and reads the configuration file, applying defaults for any
// field the file omits. Missing from every candidate path is a fatal error.
func Load() (*Config, error) {
	v := newViper()

	var readErr error
	found := false
	for _, path := range candidatePaths() {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			readErr = err
			continue
		}
		found = true
		break
	}
	if !found {
		return nil, rsvperr.NewReadConfigError(readErr)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, rsvperr.NewParseConfigError(err)
	}

	return cfg, nil
}

// LoadFile reads configuration from a specific path, bypassing the search
// order above. Used by this package's tests, which always know their fixture
// path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, rsvperr.NewReadConfigError(err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, rsvperr.NewParseConfigError(err)
	}

	return cfg, nil
}
