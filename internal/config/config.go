// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/erazemk/lendshare/internal/auth"
	"github.com/erazemk/lendshare/internal/reservation"
)

// Prefix is prepended to every environment variable name.
const Prefix = "LENDSHARE"

// Config holds everything the server reads at startup.
type Config struct {
	DBPath    string `envconfig:"DB_PATH" default:"lendshare.sqlite3"`
	Addr      string `envconfig:"ADDR" default:":8080"`
	LogPath   string `envconfig:"LOG_PATH"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	AdminEmail string `envconfig:"ADMIN_EMAIL" default:"admin@lendshare.local"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	PublicURL string `envconfig:"PUBLIC_URL"`

	StatusPolicy      string        `envconfig:"STATUS_POLICY" default:"admin"`
	StrictTransitions bool          `envconfig:"STRICT_TRANSITIONS" default:"true"`
	SecureCookies     bool          `envconfig:"SECURE_COOKIES" default:"true"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
}

// Load reads envFile (if it exists) into the environment without
// overriding variables already set, then processes LENDSHARE_* variables.
// An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if _, err := reservation.ParsePolicy(c.StatusPolicy); err != nil {
		return err
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("jwt secret must be at least %d characters", auth.MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Policy returns the configured reservation status policy.
func (c *Config) Policy() reservation.Policy {
	p, err := reservation.ParsePolicy(c.StatusPolicy)
	if err != nil {
		return reservation.AdminPolicy{}
	}
	return p
}
