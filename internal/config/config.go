package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds configuration for both services.
type Config struct {
	LogLevel string       `mapstructure:"log_level" yaml:"log_level"`
	Web      WebConfig    `mapstructure:"web" yaml:"web"`
	Ingest   IngestConfig `mapstructure:"ingest" yaml:"ingest"`
	Store    StoreConfig  `mapstructure:"store" yaml:"store"`
}

// WebConfig configures the static/form HTTP server.
type WebConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	StaticDir         string        `mapstructure:"static_dir" yaml:"static_dir"`
	IngestAddr        string        `mapstructure:"ingest_addr" yaml:"ingest_addr"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// IngestConfig configures the TCP ingest server.
type IngestConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// ReadTimeout bounds a single connection's read; zero disables it.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	// MaxPayloadBytes caps a single payload; zero means unlimited.
	MaxPayloadBytes int64 `mapstructure:"max_payload_bytes" yaml:"max_payload_bytes"`
}

// StoreConfig configures the datastore and the startup retry gate.
type StoreConfig struct {
	Driver                 string        `mapstructure:"driver" yaml:"driver"`
	Host                   string        `mapstructure:"host" yaml:"host"`
	Port                   int           `mapstructure:"port" yaml:"port"`
	Database               string        `mapstructure:"database" yaml:"database"`
	Collection             string        `mapstructure:"collection" yaml:"collection"`
	SQLitePath             string        `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout" yaml:"server_selection_timeout"`
	ConnectAttempts        int           `mapstructure:"connect_attempts" yaml:"connect_attempts"`
	ConnectDelay           time.Duration `mapstructure:"connect_delay" yaml:"connect_delay"`
}

// URI returns the MongoDB connection string for the configured host and port.
func (s StoreConfig) URI() string {
	return "mongodb://" + net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) + "/"
}

// Default returns configuration matching the stock deployment.
func Default() Config {
	return Config{
		LogLevel: "info",
		Web: WebConfig{
			Addr:              ":3000",
			StaticDir:         "front-init",
			IngestAddr:        "localhost:5001",
			DialTimeout:       5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Ingest: IngestConfig{
			Addr: ":5001",
		},
		Store: StoreConfig{
			Driver:                 DriverMongo,
			Host:                   "localhost",
			Port:                   27017,
			Database:               "messages_db",
			Collection:             "messages",
			SQLitePath:             "messages.db",
			ServerSelectionTimeout: 2 * time.Second,
			ConnectAttempts:        30,
			ConnectDelay:           time.Second,
		},
	}
}

// Validate reports the first obviously broken setting.
func (c Config) Validate() error {
	if c.Web.Addr == "" {
		return errors.New("web.addr is required")
	}
	if c.Web.IngestAddr == "" {
		return errors.New("web.ingest_addr is required")
	}
	if c.Ingest.Addr == "" {
		return errors.New("ingest.addr is required")
	}
	if c.Ingest.ReadTimeout < 0 || c.Ingest.MaxPayloadBytes < 0 {
		return errors.New("ingest limits cannot be negative")
	}
	if c.Store.ConnectAttempts <= 0 {
		return fmt.Errorf("store.connect_attempts must be positive, got %d", c.Store.ConnectAttempts)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.Host == "" || c.Store.Port <= 0 {
			return errors.New("store.host and store.port are required for mongo")
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			return errors.New("store.database and store.collection are required")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
