package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".telemetrydash"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "TELEMETRYDASH"
)

// Environment variables consulted for the connection string, in order.
var dsnEnvVars = []string{"TELEMETRYDASH_DSN", "SUPABASE_DB_URL", "DATABASE_URL"}

// Loader reads and writes the configuration file. Flags bound to its
// Viper instance override file values.
type Loader struct {
	v   *viper.Viper
	dir string
}

// NewLoader creates a loader for dir. An empty dir means ~/.telemetrydash.
func NewLoader(dir string) (*Loader, error) {
	if dir == "" {
		var err error
		dir, err = configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dashboard.schema", "public")
	v.SetDefault("dashboard.table", "curated_intelifalhas")
	v.SetDefault("dashboard.timestamp_column", "data_hora")
	v.SetDefault("dashboard.limit", 10)
	v.SetDefault("dashboard.variant", "metrics")

	return &Loader{v: v, dir: dir}, nil
}

// Viper exposes the underlying instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile reads from an explicit file instead of the config dir.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
	l.dir = filepath.Dir(path)
}

// Load reads the configuration. A missing file yields the defaults. The
// dashboard section is not validated here; see Dashboard.Validate.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes connections and preferences to the config file. Passwords
// are moved to the keyring first.
func (l *Loader) Save(cfg *Config, secrets Secrets) error {
	if err := os.MkdirAll(l.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	conns := make([]Connection, len(cfg.Connections))
	for i, c := range cfg.Connections {
		if c.Password != "" && secrets != nil {
			if err := secrets.SetPassword(c.Name, c.Password); err != nil {
				return fmt.Errorf("store password for %s: %w", c.Name, err)
			}
			c.Password = ""
		}
		conns[i] = c
	}

	l.v.Set("connections", conns)
	l.v.Set("preferences.default_connection", cfg.Preferences.DefaultConnection)
	l.v.Set("preferences.log_file", cfg.Preferences.LogFile)
	l.v.Set("preferences.debug", cfg.Preferences.Debug)
	l.v.Set("dashboard.schema", cfg.Dashboard.Schema)
	l.v.Set("dashboard.table", cfg.Dashboard.Table)
	l.v.Set("dashboard.timestamp_column", cfg.Dashboard.TimestampColumn)
	l.v.Set("dashboard.limit", cfg.Dashboard.Limit)
	l.v.Set("dashboard.variant", cfg.Dashboard.Variant)

	path := filepath.Join(l.dir, configFile+"."+configType)
	return l.v.WriteConfigAs(path)
}

// ResolveDSN picks the connection string: the explicit value, then the
// environment, then the default saved connection with its keyring
// password.
func ResolveDSN(cfg *Config, explicit string, getenv func(string) string, secrets Secrets) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, key := range dsnEnvVars {
		if v := getenv(key); v != "" {
			return v, nil
		}
	}

	conn := cfg.DefaultConnection()
	if conn == nil {
		return "", fmt.Errorf("no connection configured: pass --dsn or set %s", strings.Join(dsnEnvVars, ", "))
	}
	c := *conn
	if c.Password == "" && secrets != nil {
		pw, err := secrets.Password(c.Name)
		if err != nil && !errors.Is(err, ErrNoSecret) {
			return "", fmt.Errorf("load password for %s: %w", c.Name, err)
		}
		c.Password = pw
	}
	return c.DSN(), nil
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
