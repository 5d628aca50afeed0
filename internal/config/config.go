// Package config provides Viper-based configuration loading for the game server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MEMECLASH_SERVER_PORT.
const EnvPrefix = "MEMECLASH"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Game      GameConfig      `mapstructure:"game"`
	Transport TransportConfig `mapstructure:"transport"`
	Content   ContentConfig   `mapstructure:"content"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Env  string `mapstructure:"env"` // "development" or "production"
	// PublicURL is the externally visible base URL used in invite links.
	PublicURL       string        `mapstructure:"public_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers     int `mapstructure:"min_players"`
	MaxPlayers     int `mapstructure:"max_players"`
	HandSize       int `mapstructure:"hand_size"`
	PhraseOptions  int `mapstructure:"phrase_options"`
	RoomCodeLength int `mapstructure:"room_code_length"`
	// ReconnectGrace is how long a player disconnected in the lobby keeps their seat.
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace"`
	// AbandonTimeout is how long a room with nobody connected is kept.
	AbandonTimeout time.Duration `mapstructure:"abandon_timeout"`
	DefaultLocale  string        `mapstructure:"default_locale"`
}

// TransportConfig holds websocket transport configuration
type TransportConfig struct {
	// RatePerSecond limits inbound messages per connection.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
	SendBuffer    int     `mapstructure:"send_buffer"`
	// AllowedOrigins lists websocket origins; empty allows all.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ContentConfig points at an optional directory overriding the built-in pools
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GetAddr returns the server address
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// NewViper returns a Viper instance with defaults and environment overrides wired.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the optional YAML file at path into v, then unmarshals and validates.
//
// Precondition: v was created by NewViper.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks all configuration invariants and reports every violation at once.
func (c *Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTransport(c.Transport); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port == "" {
		errs = append(errs, "server.port must not be empty")
	}
	validEnvs := map[string]bool{"development": true, "production": true}
	if !validEnvs[s.Env] {
		errs = append(errs, fmt.Sprintf("server.env must be one of [development, production], got %q", s.Env))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.MinPlayers < 2 {
		errs = append(errs, fmt.Sprintf("game.min_players must be >= 2, got %d", g.MinPlayers))
	}
	if g.MaxPlayers < g.MinPlayers {
		errs = append(errs, "game.max_players must not be below game.min_players")
	}
	if g.HandSize < 1 {
		errs = append(errs, fmt.Sprintf("game.hand_size must be >= 1, got %d", g.HandSize))
	}
	if g.PhraseOptions < 1 {
		errs = append(errs, fmt.Sprintf("game.phrase_options must be >= 1, got %d", g.PhraseOptions))
	}
	if g.RoomCodeLength < 4 {
		errs = append(errs, fmt.Sprintf("game.room_code_length must be >= 4, got %d", g.RoomCodeLength))
	}
	if g.ReconnectGrace <= 0 {
		errs = append(errs, "game.reconnect_grace must be positive")
	}
	if g.AbandonTimeout <= 0 {
		errs = append(errs, "game.abandon_timeout must be positive")
	}
	if g.DefaultLocale == "" {
		errs = append(errs, "game.default_locale must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.RatePerSecond <= 0 {
		errs = append(errs, "transport.rate_per_second must be positive")
	}
	if t.RateBurst < 1 {
		errs = append(errs, fmt.Sprintf("transport.rate_burst must be >= 1, got %d", t.RateBurst))
	}
	if t.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("transport.send_buffer must be >= 1, got %d", t.SendBuffer))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("game.min_players", 3)
	v.SetDefault("game.max_players", 10)
	v.SetDefault("game.hand_size", 10)
	v.SetDefault("game.phrase_options", 3)
	v.SetDefault("game.room_code_length", 6)
	v.SetDefault("game.reconnect_grace", "30s")
	v.SetDefault("game.abandon_timeout", "2h")
	v.SetDefault("game.default_locale", "en")

	v.SetDefault("transport.rate_per_second", 10.0)
	v.SetDefault("transport.rate_burst", 20)
	v.SetDefault("transport.send_buffer", 256)
	v.SetDefault("transport.allowed_origins", []string{})

	v.SetDefault("content.dir", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
