package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
	Dashboard   Dashboard    `mapstructure:"dashboard" yaml:"dashboard"`
}

// Connection represents a saved database connection profile. The
// password lives in the OS keyring, not in the config file.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
	LogFile           string `mapstructure:"log_file" yaml:"log_file"`
	Debug             bool   `mapstructure:"debug" yaml:"debug"`
}

// Dashboard describes the table shown and how it is shown.
type Dashboard struct {
	Schema          string `mapstructure:"schema" yaml:"schema"`
	Table           string `mapstructure:"table" yaml:"table"`
	TimestampColumn string `mapstructure:"timestamp_column" yaml:"timestamp_column"`
	Limit           int    `mapstructure:"limit" yaml:"limit"`
	Variant         string `mapstructure:"variant" yaml:"variant"`
}

// Validate checks the dashboard section.
func (d Dashboard) Validate() error {
	if strings.TrimSpace(d.Table) == "" {
		return fmt.Errorf("dashboard.table is required")
	}
	if d.Limit <= 0 {
		return fmt.Errorf("dashboard.limit must be positive, got %d", d.Limit)
	}
	switch d.Variant {
	case "plain":
	case "metrics":
		if strings.TrimSpace(d.TimestampColumn) == "" {
			return fmt.Errorf("dashboard.timestamp_column is required for the metrics variant")
		}
	default:
		return fmt.Errorf("unknown dashboard.variant %q (want plain or metrics)", d.Variant)
	}
	return nil
}

// DSN builds a PostgreSQL connection string from the connection profile.
func (c Connection) DSN() string {
	u := url.URL{Scheme: "postgresql", Host: c.Host, Path: "/" + c.Database}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a PostgreSQL connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}

// RemoveConnection deletes the named connection. It reports whether one
// was removed.
func (cfg *Config) RemoveConnection(name string) bool {
	for i, c := range cfg.Connections {
		if c.Name == name {
			cfg.Connections = append(cfg.Connections[:i], cfg.Connections[i+1:]...)
			if cfg.Preferences.DefaultConnection == name {
				cfg.Preferences.DefaultConnection = ""
			}
			return true
		}
	}
	return false
}

// DefaultConnection returns the default connection from config, or the first one.
func (cfg *Config) DefaultConnection() *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}
