package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "MSGBOARD_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// envAliases binds legacy deployment variables onto config keys.
var envAliases = map[string]string{
	"store.host":       "MONGO_HOST",
	"store.port":       "MONGO_PORT",
	"store.database":   "MONGO_DB",
	"store.collection": "MONGO_COLLECTION",
}

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) && logger != nil {
		logger.Warn().Err(err).Msg("failed to load .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("MSGBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "MSGBOARD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return cfg, "", fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so AutomaticEnv can override values absent from the file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetDefault("web.addr", cfg.Web.Addr)
	v.SetDefault("web.static_dir", cfg.Web.StaticDir)
	v.SetDefault("web.ingest_addr", cfg.Web.IngestAddr)
	v.SetDefault("web.dial_timeout", cfg.Web.DialTimeout)
	v.SetDefault("web.read_header_timeout", cfg.Web.ReadHeaderTimeout)
	v.SetDefault("web.shutdown_timeout", cfg.Web.ShutdownTimeout)

	v.SetDefault("ingest.addr", cfg.Ingest.Addr)
	v.SetDefault("ingest.read_timeout", cfg.Ingest.ReadTimeout)
	v.SetDefault("ingest.max_payload_bytes", cfg.Ingest.MaxPayloadBytes)

	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.host", cfg.Store.Host)
	v.SetDefault("store.port", cfg.Store.Port)
	v.SetDefault("store.database", cfg.Store.Database)
	v.SetDefault("store.collection", cfg.Store.Collection)
	v.SetDefault("store.sqlite_path", cfg.Store.SQLitePath)
	v.SetDefault("store.server_selection_timeout", cfg.Store.ServerSelectionTimeout)
	v.SetDefault("store.connect_attempts", cfg.Store.ConnectAttempts)
	v.SetDefault("store.connect_delay", cfg.Store.ConnectDelay)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
