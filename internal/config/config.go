package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weather-pipeline/internal/cleaning"
	"github.com/kjstillabower/weather-pipeline/internal/client"
)

// Config holds pipeline configuration loaded from YAML and env.
type Config struct {
	WeatherAPIURL     string        `validate:"required,url"`
	WeatherAPITimeout time.Duration `validate:"gte=0"`
	Latitude          float64       `validate:"gte=-90,lte=90"`
	Longitude         float64       `validate:"gte=-180,lte=180"`
	PastDays          int           `validate:"gte=0,lte=92"`

	RawPath   string `validate:"required"`
	CleanPath string `validate:"required,nefield=RawPath"`

	Rules cleaning.Rules

	// MetricsTextfile is where metrics are written at exit; empty disables.
	MetricsTextfile string
}

type bounds struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type fileConfig struct {
	WeatherAPI struct {
		URL       string   `yaml:"url"`
		Timeout   string   `yaml:"timeout"`
		Latitude  *float64 `yaml:"latitude"`
		Longitude *float64 `yaml:"longitude"`
		PastDays  *int     `yaml:"past_days"`
	} `yaml:"weather_api"`

	Output struct {
		RawPath   string `yaml:"raw_path"`
		CleanPath string `yaml:"clean_path"`
	} `yaml:"output"`

	Cleaning struct {
		Temperature bounds `yaml:"temperature"`
		Humidity    bounds `yaml:"humidity"`
		WindSpeed   bounds `yaml:"wind_speed"`
	} `yaml:"cleaning"`

	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
}

// Defaults reproduce a run with no configuration at all.
const (
	DefaultLatitude  = 52.52
	DefaultLongitude = 13.41
	DefaultPastDays  = 10
	DefaultRawPath   = "weather_data.csv"
	DefaultCleanPath = "cleaned_data.csv"
	DefaultTimeout   = 30 * time.Second
)

// Load reads an optional .env file, then config/{ENV_NAME}.yaml (default dev)
// relative to the working directory. A missing YAML file means defaults.
// WEATHER_API_URL, RAW_DATA_PATH, CLEAN_DATA_PATH and METRICS_TEXTFILE override the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.WeatherAPIURL = firstNonEmpty(os.Getenv("WEATHER_API_URL"), fc.WeatherAPI.URL, client.DefaultBaseURL)
	cfg.WeatherAPITimeout = parseDuration(fc.WeatherAPI.Timeout, DefaultTimeout)
	cfg.Latitude = floatOr(fc.WeatherAPI.Latitude, DefaultLatitude)
	cfg.Longitude = floatOr(fc.WeatherAPI.Longitude, DefaultLongitude)
	cfg.PastDays = DefaultPastDays
	if fc.WeatherAPI.PastDays != nil {
		cfg.PastDays = *fc.WeatherAPI.PastDays
	}

	cfg.RawPath = firstNonEmpty(os.Getenv("RAW_DATA_PATH"), fc.Output.RawPath, DefaultRawPath)
	cfg.CleanPath = firstNonEmpty(os.Getenv("CLEAN_DATA_PATH"), fc.Output.CleanPath, DefaultCleanPath)

	def := cleaning.DefaultRules()
	cfg.Rules = cleaning.Rules{
		Temperature: fc.Cleaning.Temperature.apply(def.Temperature),
		Humidity:    fc.Cleaning.Humidity.apply(def.Humidity),
		WindSpeed:   fc.Cleaning.WindSpeed.apply(def.WindSpeed),
	}

	cfg.MetricsTextfile = firstNonEmpty(os.Getenv("METRICS_TEXTFILE"), fc.Metrics.TextfilePath)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b bounds) apply(def cleaning.Bounds) cleaning.Bounds {
	return cleaning.Bounds{Min: floatOr(b.Min, def.Min), Max: floatOr(b.Max, def.Max)}
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration returns defaultVal on an empty or unparsable string. "0"
// is kept and disables the client timeout.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

var structValidator = validator.New()

// validate checks field ranges via struct tags, then the cleaning bounds.
func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: invalid %s (%s=%s): %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
