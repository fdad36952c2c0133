package config

import (
	"fmt"
	"time"

	"github.com/nikolailic0529/easyquote-ingest/internal/db"
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
	"github.com/nikolailic0529/easyquote-ingest/internal/mapping"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	UploadDir      string
}

// Config is the full application configuration.
type Config struct {
	DB      db.Config
	Server  ServerConfig
	Engine  extraction.Config
	Mapping mapping.Config
}

// DefaultConfig returns a configuration that works for local development.
func DefaultConfig() Config {
	return Config{
		DB: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			UploadDir:      "./uploads",
		},
		Engine: extraction.Config{
			BaseURL: "http://localhost:1337",
			Timeout: 5 * time.Minute,
		},
		Mapping: mapping.Config{
			Timeout:          30 * time.Second,
			AliasConcurrency: 4,
		},
	}
}

// Load reads config.yaml from configPath, with environment overrides.
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv() // allow environment overrides
	v.SetEnvPrefix("EQ")

	// Map nested keys to flat env vars like EQ_DATABASE.HOST
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("server.upload_dir")
	v.BindEnv("engine.base_url")
	v.BindEnv("engine.username")
	v.BindEnv("engine.password")
	v.BindEnv("mapping.base_url")
	v.BindEnv("mapping.token_url")
	v.BindEnv("mapping.client_id")
	v.BindEnv("mapping.client_secret")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.upload_dir") {
		cfg.Server.UploadDir = v.GetString("server.upload_dir")
	}

	if v.IsSet("engine.base_url") {
		cfg.Engine.BaseURL = v.GetString("engine.base_url")
	}
	if v.IsSet("engine.username") {
		cfg.Engine.Username = v.GetString("engine.username")
	}
	if v.IsSet("engine.password") {
		cfg.Engine.Password = v.GetString("engine.password")
	}
	if v.IsSet("engine.timeout") {
		cfg.Engine.Timeout = v.GetDuration("engine.timeout")
	}

	if v.IsSet("mapping.base_url") {
		cfg.Mapping.BaseURL = v.GetString("mapping.base_url")
	}
	if v.IsSet("mapping.token_url") {
		cfg.Mapping.TokenURL = v.GetString("mapping.token_url")
	}
	if v.IsSet("mapping.client_id") {
		cfg.Mapping.ClientID = v.GetString("mapping.client_id")
	}
	if v.IsSet("mapping.client_secret") {
		cfg.Mapping.ClientSecret = v.GetString("mapping.client_secret")
	}
	if v.IsSet("mapping.timeout") {
		cfg.Mapping.Timeout = v.GetDuration("mapping.timeout")
	}
	if v.IsSet("mapping.alias_concurrency") {
		cfg.Mapping.AliasConcurrency = v.GetInt("mapping.alias_concurrency")
	}

	return cfg, nil
}
