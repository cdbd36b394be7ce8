// Package config loads the run configuration from the process environment and
// an optional dotenv file. ENV=qa selects .env.qa, anything else selects .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"excel_automation/domain/entities"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL           = "https://office.live.com/"
	DefaultActionTimeout     = 10 * time.Second
	DefaultNavigationTimeout = 300 * time.Second
	DefaultArtifactsDir      = "test-results"
	DefaultReportDir         = "playwright-report"

	defaultEnvFile = ".env"
	qaEnvFile      = ".env.qa"
)

// Browser engines Playwright can launch.
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// Config holds all run configuration.
type Config struct {
	EnvFile     string // dotenv file that was read, empty if none
	BaseURL     string
	Credentials *entities.Credentials

	BrowserName string
	Headless    bool
	SlowMo      time.Duration

	ActionTimeout     time.Duration
	NavigationTimeout time.Duration

	ArtifactsDir string
	ReportDir    string
	LogLevel     logrus.Level
}

// ValidationError collects every configuration problem found in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// EnvFileName returns the dotenv file selected by the ENV value.
func EnvFileName(env string) string {
	if strings.TrimSpace(env) == "qa" {
		return qaEnvFile
	}
	return defaultEnvFile
}

// Load reads configuration with dotenv files resolved against the working directory.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads configuration with dotenv files resolved against dir.
// Values already present in the process environment win over file values.
func LoadFrom(dir string) (*Config, error) {
	fileValues, envFile, err := readEnvFile(dir)
	if err != nil {
		return nil, err
	}
	raw := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileValues[key]
	}
	return parse(raw, envFile)
}

func readEnvFile(dir string) (map[string]string, string, error) {
	candidates := []string{filepath.Join(dir, EnvFileName(os.Getenv("ENV")))}
	if fallback := filepath.Join(dir, defaultEnvFile); fallback != candidates[0] {
		candidates = append(candidates, fallback)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return values, path, nil
	}
	return map[string]string{}, "", nil
}

// parse reads every key trimmed except EXCEL_PASSWORD, which is used as read.
func parse(raw func(string) string, envFile string) (*Config, error) {
	var problems []string
	lookup := func(key string) string {
		return strings.TrimSpace(raw(key))
	}

	cfg := &Config{
		EnvFile:      envFile,
		BaseURL:      getOrDefault(lookup, "BASE_URL", DefaultBaseURL),
		BrowserName:  strings.ToLower(getOrDefault(lookup, "BROWSER_NAME", BrowserChromium)),
		ArtifactsDir: getOrDefault(lookup, "ARTIFACTS_DIR", DefaultArtifactsDir),
		ReportDir:    getOrDefault(lookup, "REPORT_DIR", DefaultReportDir),
	}

	creds, err := entities.NewCredentials(lookup("EXCEL_USERNAME"), raw("EXCEL_PASSWORD"))
	if err != nil {
		problems = append(problems, "EXCEL_USERNAME and EXCEL_PASSWORD are required: "+err.Error())
	}
	cfg.Credentials = creds

	switch cfg.BrowserName {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		problems = append(problems, fmt.Sprintf("BROWSER_NAME %q is not one of chromium, firefox, webkit", cfg.BrowserName))
	}

	cfg.Headless = true
	if s := lookup("HEADLESS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("HEADLESS %q is not a boolean", s))
		} else {
			cfg.Headless = v
		}
	}

	cfg.ActionTimeout = parseDuration(lookup, "ACTION_TIMEOUT", DefaultActionTimeout, &problems)
	cfg.NavigationTimeout = parseDuration(lookup, "NAVIGATION_TIMEOUT", DefaultNavigationTimeout, &problems)
	cfg.SlowMo = parseDuration(lookup, "SLOW_MO", 0, &problems)

	cfg.LogLevel = logrus.InfoLevel
	if s := lookup("LOG_LEVEL"); s != "" {
		level, err := logrus.ParseLevel(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a log level", s))
		} else {
			cfg.LogLevel = level
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	return cfg, nil
}

// Profile names the browser profile the way the report shows it, e.g. "Chromium Headless".
func (c *Config) Profile() string {
	var name string
	switch c.BrowserName {
	case "", BrowserChromium:
		name = "Chromium"
	case BrowserWebKit:
		name = "WebKit"
	default:
		name = strings.ToUpper(c.BrowserName[:1]) + c.BrowserName[1:]
	}
	if c.Headless {
		return name + " Headless"
	}
	return name
}

// NewLogger builds the run logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

func getOrDefault(lookup func(string) string, key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

// parseDuration accepts Go durations ("10s") or bare milliseconds ("10000").
func parseDuration(lookup func(string) string, key string, def time.Duration, problems *[]string) time.Duration {
	raw := lookup(key)
	if raw == "" {
		return def
	}
	if ms, err := strconv.Atoi(raw); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		*problems = append(*problems, fmt.Sprintf("%s %q is not a duration", key, raw))
		return def
	}
	return d
}
