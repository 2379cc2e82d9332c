package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/weather-pipeline/internal/cleaning"
	"github.com/kjstillabower/weather-pipeline/internal/client"
)

// chdirTemp switches into a fresh directory for the duration of the test and
// clears the env vars Load reads.
func chdirTemp(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"ENV_NAME", "WEATHER_API_URL", "RAW_DATA_PATH", "CLEAN_DATA_PATH", "METRICS_TEXTFILE"} {
		t.Setenv(k, "")
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	return dir
}

func writeEnvFile(t *testing.T, dir, name, body string) {
	t.Helper()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, name+".yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIURL != client.DefaultBaseURL {
		t.Errorf("WeatherAPIURL = %q, want %q", cfg.WeatherAPIURL, client.DefaultBaseURL)
	}
	if cfg.Latitude != 52.52 || cfg.Longitude != 13.41 {
		t.Errorf("coordinates = %v,%v, want 52.52,13.41", cfg.Latitude, cfg.Longitude)
	}
	if cfg.PastDays != 10 {
		t.Errorf("PastDays = %d, want 10", cfg.PastDays)
	}
	if cfg.RawPath != "weather_data.csv" || cfg.CleanPath != "cleaned_data.csv" {
		t.Errorf("paths = %q,%q", cfg.RawPath, cfg.CleanPath)
	}
	if cfg.Rules != cleaning.DefaultRules() {
		t.Errorf("Rules = %+v, want defaults", cfg.Rules)
	}
	if cfg.WeatherAPITimeout != DefaultTimeout {
		t.Errorf("WeatherAPITimeout = %v, want %v", cfg.WeatherAPITimeout, DefaultTimeout)
	}
	if cfg.MetricsTextfile != "" {
		t.Errorf("MetricsTextfile = %q, want empty", cfg.MetricsTextfile)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	dir := chdirTemp(t)
	writeEnvFile(t, dir, "dev", `
weather_api:
  url: http://localhost:9999/v1/forecast
  timeout: 5s
  latitude: 0
  longitude: -0.12
  past_days: 3
output:
  raw_path: out/raw.csv
  clean_path: out/clean.csv
cleaning:
  temperature:
    min: -10
  wind_speed:
    max: 40
metrics:
  textfile_path: /tmp/pipeline.prom
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIURL != "http://localhost:9999/v1/forecast" {
		t.Errorf("WeatherAPIURL = %q", cfg.WeatherAPIURL)
	}
	if cfg.WeatherAPITimeout != 5*time.Second {
		t.Errorf("WeatherAPITimeout = %v, want 5s", cfg.WeatherAPITimeout)
	}
	if cfg.Latitude != 0 || cfg.Longitude != -0.12 {
		t.Errorf("coordinates = %v,%v, want 0,-0.12", cfg.Latitude, cfg.Longitude)
	}
	if cfg.PastDays != 3 {
		t.Errorf("PastDays = %d, want 3", cfg.PastDays)
	}
	if cfg.RawPath != "out/raw.csv" || cfg.CleanPath != "out/clean.csv" {
		t.Errorf("paths = %q,%q", cfg.RawPath, cfg.CleanPath)
	}
	want := cleaning.Rules{
		Temperature: cleaning.Bounds{Min: -10, Max: 60},
		Humidity:    cleaning.Bounds{Min: 0, Max: 80},
		WindSpeed:   cleaning.Bounds{Min: 3, Max: 40},
	}
	if cfg.Rules != want {
		t.Errorf("Rules = %+v, want %+v", cfg.Rules, want)
	}
	if cfg.MetricsTextfile != "/tmp/pipeline.prom" {
		t.Errorf("MetricsTextfile = %q", cfg.MetricsTextfile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	writeEnvFile(t, dir, "prod", "output:\n  raw_path: file-raw.csv\n")
	t.Setenv("ENV_NAME", "prod")
	t.Setenv("WEATHER_API_URL", "https://example.test/forecast")
	t.Setenv("RAW_DATA_PATH", "env-raw.csv")
	t.Setenv("CLEAN_DATA_PATH", "env-clean.csv")
	t.Setenv("METRICS_TEXTFILE", "env.prom")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIURL != "https://example.test/forecast" {
		t.Errorf("WeatherAPIURL = %q", cfg.WeatherAPIURL)
	}
	if cfg.RawPath != "env-raw.csv" || cfg.CleanPath != "env-clean.csv" {
		t.Errorf("paths = %q,%q", cfg.RawPath, cfg.CleanPath)
	}
	if cfg.MetricsTextfile != "env.prom" {
		t.Errorf("MetricsTextfile = %q", cfg.MetricsTextfile)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	os.Unsetenv("RAW_DATA_PATH")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RAW_DATA_PATH=dotenv-raw.csv\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("RAW_DATA_PATH") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RawPath != "dotenv-raw.csv" {
		t.Errorf("RawPath = %q, want value from .env", cfg.RawPath)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	writeEnvFile(t, dir, "dev", "weather_api: [unclosed\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("Load() error = %v, want parse config file error", err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"latitude out of range", "weather_api:\n  latitude: 91\n", "Latitude"},
		{"longitude out of range", "weather_api:\n  longitude: -200\n", "Longitude"},
		{"past days too large", "weather_api:\n  past_days: 93\n", "PastDays"},
		{"negative past days", "weather_api:\n  past_days: -1\n", "PastDays"},
		{"bad url", "weather_api:\n  url: not a url\n", "WeatherAPIURL"},
		{"negative timeout", "weather_api:\n  timeout: -1s\n", "WeatherAPITimeout"},
		{"same output paths", "output:\n  raw_path: a.csv\n  clean_path: a.csv\n", "CleanPath"},
		{"inverted bounds", "cleaning:\n  humidity:\n    min: 90\n", "invalid bounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			writeEnvFile(t, dir, "dev", tt.yaml)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error, got config %+v", cfg)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 7 * time.Second},
		{"   ", 7 * time.Second},
		{"garbage", 7 * time.Second},
		{"0", 0},
		{"1m30s", 90 * time.Second},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in, 7*time.Second); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
