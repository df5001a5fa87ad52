// Package config loads salarystats settings from a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fr4nk3nst1ner/salarystats/internal/utils"
)

// Environment variables read on top of the config file
const (
	EnvHeadHunterToken = "HH_SECRET_KEY"
	EnvSuperJobToken   = "SUPER_JOB_SECRET_KEY"
	EnvLanguages       = "SALARYSTATS_LANGUAGES"
	EnvLogLevel        = "SALARYSTATS_LOG_LEVEL"
)

// DefaultConfigPath is used when no --config flag is given
const DefaultConfigPath = "config.yaml"

// Config represents the application configuration
type Config struct {
	Languages         []string      `yaml:"languages" default:"[\"Python\",\"C\",\"C++\",\"C#\",\"Javascript\",\"Java\",\"PHP\",\"Go\"]" validate:"required,min=1,dive,required"`
	ReferenceCurrency string        `yaml:"reference_currency" default:"RUR" validate:"required,len=3"`
	MaxListings       int           `yaml:"max_listings" default:"500" validate:"gte=1"`
	Timeout           time.Duration `yaml:"timeout" default:"15s" validate:"gt=0s"`
	MaxRetries        int           `yaml:"max_retries" default:"3" validate:"gte=0,lte=10"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" default:"1s" validate:"gte=0s"`
	Proxy             string        `yaml:"proxy" validate:"omitempty,url"`

	Log        LogConfig        `yaml:"log"`
	HeadHunter HeadHunterConfig `yaml:"headhunter"`
	SuperJob   SuperJobConfig   `yaml:"superjob"`
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

// HeadHunterConfig configures the api.hh.ru source
type HeadHunterConfig struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	Title        string        `yaml:"title" default:"HeadHunter (Moscow)"`
	BaseURL      string        `yaml:"base_url" default:"https://api.hh.ru" validate:"required,url"`
	Token        string        `yaml:"token"`
	Area         string        `yaml:"area" default:"1" validate:"required"`
	PeriodDays   int           `yaml:"period_days" default:"30" validate:"gte=1,lte=30"`
	PerPage      int           `yaml:"per_page" default:"100" validate:"gte=1,lte=100"`
	RequestDelay time.Duration `yaml:"request_delay" default:"3s" validate:"gte=0s"`
}

// SuperJobConfig configures the api.superjob.ru source
type SuperJobConfig struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	Title        string        `yaml:"title" default:"SuperJob (Moscow)"`
	BaseURL      string        `yaml:"base_url" default:"https://api.superjob.ru/2.0" validate:"required,url"`
	Token        string        `yaml:"token" validate:"required_if=Enabled true"`
	Town         string        `yaml:"town" default:"4" validate:"required"`
	Catalogue    string        `yaml:"catalogue" default:"48"`
	PerPage      int           `yaml:"per_page" default:"100" validate:"gte=1,lte=100"`
	RequestDelay time.Duration `yaml:"request_delay" default:"0s" validate:"gte=0s"`
}

var validate = validator.New()

// LoadDotEnv loads variables from .env files without overriding ones already
// set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Default returns a configuration populated only with default values
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads the YAML config at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			// Expand ${VAR} environment variables
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadAndValidate loads config and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHeadHunterToken); v != "" {
		c.HeadHunter.Token = v
	}
	if v := os.Getenv(EnvSuperJobToken); v != "" {
		c.SuperJob.Token = v
	}
	if v := os.Getenv(EnvLanguages); v != "" {
		c.Languages = utils.SplitList(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// DisableSourcesWithoutToken turns off enabled sources that need a token but
// have none, and returns their names.
func (c *Config) DisableSourcesWithoutToken() []string {
	var disabled []string
	if c.SuperJob.Enabled && c.SuperJob.Token == "" {
		c.SuperJob.Enabled = false
		disabled = append(disabled, "superjob")
	}
	return disabled
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q rule", strings.ToLower(fe.Namespace()), fe.Tag())
		}
		return err
	}
	if !c.HeadHunter.Enabled && !c.SuperJob.Enabled {
		return errors.New("at least one of headhunter or superjob must be enabled")
	}
	return nil
}
