// Package config loads the riskfolio configuration from a YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Gemini struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gemini"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Funds struct {
		BaseURL     string `yaml:"base_url"`
		RefreshCron string `yaml:"refresh_cron"`
		Cache       bool   `yaml:"cache"`
		CacheDir    string `yaml:"cache_dir"`
	} `yaml:"funds"`
	Scoring struct {
		HorizonLabels string `yaml:"horizon_labels"`
		ClampAge      bool   `yaml:"clamp_age"`
	} `yaml:"scoring"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8000
	cfg.Server.RequestTimeout = 60 * time.Second
	cfg.Log.Level = "info"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Gemini.Timeout = riskfolio.DefaultTimeout
	cfg.Database.SQLitePath = "riskfolio.db"
	cfg.Funds.BaseURL = "https://www.rupeevest.com"
	cfg.Funds.RefreshCron = "0 30 6 * * *"
	cfg.Scoring.HorizonLabels = string(riskfolio.LegacyHorizons)
	cfg.Scoring.ClampAge = true
	return cfg
}

// Load reads the YAML file at path, if it exists, over the defaults. Then it
// loads envFiles, or ".env" when none is given, and applies environment
// variable overrides. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if len(envFiles) == 0 {
		// .env is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setString("GEMINI_API_KEY", &c.Gemini.APIKey)
	setString("GEMINI_MODEL", &c.Gemini.Model)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("FUNDS_BASE_URL", &c.Funds.BaseURL)
	setString("FUNDS_REFRESH_CRON", &c.Funds.RefreshCron)
	setString("FUNDS_CACHE_DIR", &c.Funds.CacheDir)
	setString("SCORING_HORIZON_LABELS", &c.Scoring.HorizonLabels)
	errs = append(errs,
		setInt("RISKFOLIO_PORT", &c.Server.Port),
		setDuration("RISKFOLIO_REQUEST_TIMEOUT", &c.Server.RequestTimeout),
		setDuration("GEMINI_TIMEOUT", &c.Gemini.Timeout),
		setBool("LOG_PRETTY", &c.Log.Pretty),
		setBool("FUNDS_CACHE", &c.Funds.Cache),
		setBool("SCORING_CLAMP_AGE", &c.Scoring.ClampAge),
	)
	return errors.Join(errs...)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is not a valid port", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini.timeout must be positive")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if _, err := riskfolio.ParseHorizonTable(c.Scoring.HorizonLabels); err != nil {
		return fmt.Errorf("scoring.horizon_labels: %w", err)
	}
	return nil
}

// Scorer returns the risk scorer configured by the scoring section.
func (c *Config) Scorer() riskfolio.Scorer {
	horizons, err := riskfolio.ParseHorizonTable(c.Scoring.HorizonLabels)
	if err != nil {
		// rejected by Validate
		horizons = riskfolio.LegacyHorizons
	}
	return riskfolio.Scorer{Horizons: horizons, UnboundedAge: !c.Scoring.ClampAge}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
