package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

/* Config é um pacote auxiliar. Lê .env (toml) do diretório atual e variáveis de ambiente */

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	PostgresHost               string `mapstructure:"POSTGRES_HOST"`
	PostgresPort               string `mapstructure:"POSTGRES_PORT"`
	PostgresUser               string `mapstructure:"POSTGRES_USER"`
	PostgresPassword           string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB                 string `mapstructure:"POSTGRES_DB"`
	PostgresSSLMode            string `mapstructure:"POSTGRES_SSLMODE"`
	PostgresDriver             string `mapstructure:"POSTGRES_DRIVER"`
	PostgresMaxOpenConns       int    `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	PostgresMaxIdleConns       int    `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	PostgresConnMaxLifeMinutes int    `mapstructure:"POSTGRES_CONN_MAX_LIFE_MINUTES"`

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	SeedFile       string `mapstructure:"SEED_FILE"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
}

var defaults = map[string]any{
	"PORT":                           "8080",
	"STORE_DRIVER":                   StoreMemory,
	"SQLITE_PATH":                    "books.db",
	"POSTGRES_HOST":                  "localhost",
	"POSTGRES_PORT":                  "5432",
	"POSTGRES_USER":                  "",
	"POSTGRES_PASSWORD":              "",
	"POSTGRES_DB":                    "",
	"POSTGRES_SSLMODE":               "disable",
	"POSTGRES_DRIVER":                "postgres",
	"POSTGRES_MAX_OPEN_CONNS":        25,
	"POSTGRES_MAX_IDLE_CONNS":        5,
	"POSTGRES_CONN_MAX_LIFE_MINUTES": 5,
	"REDIS_ADDR":                     "",
	"REDIS_PASSWORD":                 "",
	"REDIS_DB":                       0,
	"CACHE_TTL_SECONDS":              300,
	"SEED_FILE":                      "",
	"METRICS_ENABLED":                true,
}

// GetConfig reads .env from the current directory, if present, and the environment.
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads .env (toml) from dir. A missing file is fine: environment and defaults still apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	config.StoreDriver = strings.ToLower(config.StoreDriver)
	return &config, nil
}

// Validate checks the store selection and what that store needs
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if err := c.ValidatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)", c.StoreDriver, StoreMemory, StorePostgres, StoreSQLite)
	}
	if c.RedisAddr != "" && c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive when REDIS_ADDR is set")
	}
	return nil
}

// ValidatePostgres checks the POSTGRES_* variables
func (c *Config) ValidatePostgres() error {
	var missing []string
	for name, value := range map[string]string{
		"POSTGRES_HOST": c.PostgresHost,
		"POSTGRES_PORT": c.PostgresPort,
		"POSTGRES_USER": c.PostgresUser,
		"POSTGRES_DB":   c.PostgresDB,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing postgres configuration: %s", strings.Join(missing, ", "))
	}
	if c.PostgresDriver != "postgres" && c.PostgresDriver != "pgx" {
		return fmt.Errorf("POSTGRES_DRIVER must be postgres or pgx (got %q)", c.PostgresDriver)
	}
	return nil
}

// PostgresConnectionString builds a URL DSN understood by both lib/pq and pgx
func (c *Config) PostgresConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   c.PostgresHost + ":" + c.PostgresPort,
		Path:   "/" + c.PostgresDB,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Config) GetPostgresMaxOpenConns() int {
	if c.PostgresMaxOpenConns <= 0 {
		return 25
	}
	return c.PostgresMaxOpenConns
}

func (c *Config) GetPostgresMaxIdleConns() int {
	if c.PostgresMaxIdleConns <= 0 {
		return 5
	}
	return c.PostgresMaxIdleConns
}

func (c *Config) GetPostgresConnMaxLifeMinutes() int {
	if c.PostgresConnMaxLifeMinutes <= 0 {
		return 5
	}
	return c.PostgresConnMaxLifeMinutes
}

