// Package config loads the YAML configuration file and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"

	developmentSecret = "development-secret"
)

var ErrInvalidConfig = errors.New("invalid config")

type GameConfig struct {
	FlagBeforeFirstOpen bool     `yaml:"flag_before_first_open"`
	ClampFlags          bool     `yaml:"clamp_flags"`
	TickInterval        Duration `yaml:"tick_interval"`
}

type StorageConfig struct {
	Kind        string `yaml:"kind"`
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

type JWTConfig struct {
	Secret        string   `yaml:"secret"`
	TokenLifetime Duration `yaml:"token_lifetime"`
}

type CookiesConfig struct {
	Domain   string `yaml:"domain"`
	SameSite string `yaml:"same_site"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Config struct {
	Mode           string        `yaml:"mode"`
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SnapshotsDir   string        `yaml:"snapshots_dir"`
	Levels         mines.Levels  `yaml:"levels"`
	Game           GameConfig    `yaml:"game"`
	Storage        StorageConfig `yaml:"storage"`
	JWT            JWTConfig     `yaml:"jwt"`
	Cookies        CookiesConfig `yaml:"cookies"`
	Log            LogConfig     `yaml:"log"`
}

func Default() Config {
	return Config{
		Mode:   ModeProduction,
		Addr:   ":8000",
		Levels: mines.DefaultLevels(),
		Game: GameConfig{
			FlagBeforeFirstOpen: true,
			TickInterval:        Duration{time.Second},
		},
		Storage: StorageConfig{
			Kind:  StorageMemory,
			Table: "kv_store",
		},
		JWT: JWTConfig{
			TokenLifetime: Duration{30 * 24 * time.Hour},
		},
		Cookies: CookiesConfig{
			SameSite: "strict",
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ReadConfig decodes the YAML file at path over config.
func ReadConfig(path string, config *Config) error {
	if b, err := os.ReadFile(path); err != nil {
		return err
	} else {
		return yaml.Unmarshal(b, config)
	}
}

// ApplyEnv overrides config with DATABASE_URL, JWT_SECRET, DEVELOPMENT and
// APP_ADDR when they are set.
func (c *Config) ApplyEnv() {
	if dbUrl, ok := os.LookupEnv("DATABASE_URL"); ok {
		c.Storage.DatabaseURL = dbUrl
		c.Storage.Kind = StoragePostgres
	}
	if secret, ok := os.LookupEnv("JWT_SECRET"); ok {
		c.JWT.Secret = secret
	}
	if development, ok := os.LookupEnv("DEVELOPMENT"); ok {
		if development != "0" {
			c.Mode = ModeDevelopment
		} else {
			c.Mode = ModeProduction
		}
	}
	if addr, ok := os.LookupEnv("APP_ADDR"); ok {
		c.Addr = addr
	}
}

// Load reads the file at path, if any, then the environment, and validates
// the result.
func Load(path string) (Config, error) {
	config := Default()
	if path != "" {
		if err := ReadConfig(path, &config); err != nil {
			return config, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}
	config.ApplyEnv()
	if config.Development() && config.JWT.Secret == "" {
		config.JWT.Secret = developmentSecret
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if err := c.Levels.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, level := range []mines.Level{mines.Easy, mines.Medium, mines.Hard} {
		if _, ok := c.Levels[level]; !ok {
			return fmt.Errorf("%w: level %s is missing", ErrInvalidConfig, level)
		}
	}
	if c.Game.TickInterval.Duration <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
	}
	switch c.Storage.Kind {
	case StorageMemory:
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: file storage needs a dir", ErrInvalidConfig)
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres storage needs a database_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage.Kind)
	}
	return nil
}

// ValidateServe checks what only the game server needs on top of [Config.Validate].
func (c Config) ValidateServe() error {
	if c.Production() && c.JWT.Secret == "" {
		return fmt.Errorf("%w: jwt secret is required in production", ErrInvalidConfig)
	}
	if c.JWT.TokenLifetime.Duration <= 0 {
		return fmt.Errorf("%w: token_lifetime must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":                   c.Mode,
		"addr":                   c.Addr,
		"allowed_origins":        strings.Join(c.AllowedOrigins, ","),
		"snapshots_dir":          c.SnapshotsDir,
		"storage":                c.Storage.Kind,
		"storage_dir":            c.Storage.Dir,
		"storage_table":          c.Storage.Table,
		"flag_before_first_open": c.Game.FlagBeforeFirstOpen,
		"clamp_flags":            c.Game.ClampFlags,
		"jwt_token_lifetime":     c.JWT.TokenLifetime.Duration.String(),
		"cookies_domain":         c.Cookies.Domain,
		"log_file":               c.Log.File,
	}
}

func (c Config) Production() bool {
	return c.Mode == ModeProduction
}

func (c Config) Development() bool {
	return c.Mode != ModeProduction
}

func (c Config) CookieSameSite() http.SameSite {
	switch strings.ToUpper(c.Cookies.SameSite) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
