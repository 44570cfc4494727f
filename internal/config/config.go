// Package config provides centralized configuration for the flight-search
// end-to-end suite. It loads an optional .env file, environment variables and
// CLI flags, validates them, and provides sensible defaults.
//
// CLI flags control how the suite runs (--headed, --features, --tags, --format).
// Environment variables describe the target site, the browser and artifact storage.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kuitang/flightsearch-e2e/internal/urlutil"
)

const (
	// BaseURL is the site under test.
	BaseURL = "https://www.kiwi.com/en/"
	// SearchResultsURL is where a submitted search lands.
	SearchResultsURL = BaseURL + "search/results"

	// ConsentCookieName marks the cookie policy as accepted.
	ConsentCookieName = "__kwc_agreed"

	defaultTimeout          = 30 * time.Second
	defaultCalendarMaxPages = 24
	defaultAWSRegion        = "auto"
)

// Config holds all suite configuration.
type Config struct {
	// Target site
	BaseURL          string
	SearchResultsURL string
	ConsentDomain    string // host the consent cookie is scoped to

	// Browser
	Headless       bool
	SlowMo         time.Duration
	Timeout        time.Duration // default Playwright action/navigation timeout
	Locale         string
	ViewportWidth  int
	ViewportHeight int

	// Calendar paging bound
	CalendarMaxPages int

	// Scenario runner (CLI flags)
	FeaturePaths []string
	Tags         string
	Format       string

	// Logging
	LogLevel string

	// Failure artifacts
	ArtifactsDir       string // local directory for screenshots; empty disables
	ArtifactsBucket    string // S3 bucket for screenshots; empty disables
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
}

// Flags are the CLI-controlled settings.
type Flags struct {
	Headed   bool
	Features string
	Tags     string
	Format   string
	EnvFile  string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags registers and parses the runner flags on fs.
func ParseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	var f Flags
	fs.BoolVar(&f.Headed, "headed", false, "Run the browser with a visible window (overrides HEADLESS)")
	fs.StringVar(&f.Features, "features", "", "Comma-separated feature paths (default features, overrides FEATURE_PATHS)")
	fs.StringVar(&f.Tags, "tags", "", "Tag expression selecting scenarios, e.g. @smoke")
	fs.StringVar(&f.Format, "format", "", "Scenario output format: pretty, progress, cucumber, junit")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(flags Flags) (*Config, error) {
	cfg := &Config{}

	// Target site
	cfg.BaseURL = urlutil.BaseWithSlash(getEnvOrDefault("BASE_URL", BaseURL))
	cfg.SearchResultsURL = urlutil.BuildAbsolute(cfg.BaseURL, "search/results")
	cfg.ConsentDomain = getEnvOrDefault("CONSENT_DOMAIN", urlutil.Host(cfg.BaseURL))

	// Browser
	cfg.Headless = parseBoolOrDefault("HEADLESS", true)
	if flags.Headed {
		cfg.Headless = false
	}
	cfg.SlowMo = parseDurationOrDefault("SLOW_MO", 0)
	cfg.Timeout = parseDurationOrDefault("BROWSER_TIMEOUT", defaultTimeout)
	cfg.Locale = getEnvOrDefault("BROWSER_LOCALE", "en-US")
	cfg.ViewportWidth = parseIntOrDefault("VIEWPORT_WIDTH", 1440)
	cfg.ViewportHeight = parseIntOrDefault("VIEWPORT_HEIGHT", 900)

	cfg.CalendarMaxPages = parseIntOrDefault("CALENDAR_MAX_PAGES", defaultCalendarMaxPages)

	// Scenario runner
	features := flags.Features
	if features == "" {
		features = getEnvOrDefault("FEATURE_PATHS", "features")
	}
	cfg.FeaturePaths = splitList(features)
	cfg.Tags = flags.Tags
	if cfg.Tags == "" {
		cfg.Tags = strings.TrimSpace(os.Getenv("TAGS"))
	}
	cfg.Format = flags.Format
	if cfg.Format == "" {
		cfg.Format = getEnvOrDefault("FORMAT", "pretty")
	}

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Failure artifacts
	cfg.ArtifactsDir = strings.TrimSpace(os.Getenv("ARTIFACTS_DIR"))
	cfg.ArtifactsBucket = strings.TrimSpace(os.Getenv("ARTIFACTS_BUCKET"))
	cfg.AWSEndpointS3 = strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL_S3"))
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultAWSRegion)
	cfg.AWSAccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.AWSSecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "BASE_URL must be an absolute URL")
	}
	if c.ConsentDomain == "" {
		errs = append(errs, "CONSENT_DOMAIN could not be derived from BASE_URL")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "BROWSER_TIMEOUT must be positive")
	}
	if c.SlowMo < 0 {
		errs = append(errs, "SLOW_MO must not be negative")
	}
	if c.CalendarMaxPages <= 0 {
		errs = append(errs, "CALENDAR_MAX_PAGES must be positive")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		errs = append(errs, "VIEWPORT_WIDTH and VIEWPORT_HEIGHT must be positive")
	}
	if len(c.FeaturePaths) == 0 {
		errs = append(errs, "at least one feature path is required (--features or FEATURE_PATHS)")
	}

	// S3 artifacts: credentials travel together
	if c.ArtifactsBucket != "" {
		if c.AWSAccessKeyID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required when ARTIFACTS_BUCKET is set")
		}
		if c.AWSSecretAccessKey == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required when ARTIFACTS_BUCKET is set")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// TimeoutMS returns Timeout in the float milliseconds Playwright expects.
func (c *Config) TimeoutMS() float64 {
	return float64(c.Timeout.Milliseconds())
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "flightsearch-e2e starting...")
	fmt.Fprintf(os.Stderr, "  Site:      %s\n", c.BaseURL)
	if c.Headless {
		fmt.Fprintln(os.Stderr, "  Browser:   Chromium (headless)")
	} else {
		fmt.Fprintln(os.Stderr, "  Browser:   Chromium (headed)")
	}
	fmt.Fprintf(os.Stderr, "  Timeout:   %s\n", c.Timeout)
	fmt.Fprintf(os.Stderr, "  Features:  %s\n", strings.Join(c.FeaturePaths, ", "))
	if c.Tags != "" {
		fmt.Fprintf(os.Stderr, "  Tags:      %s\n", c.Tags)
	}
	switch {
	case c.ArtifactsBucket != "":
		fmt.Fprintf(os.Stderr, "  Artifacts: s3://%s\n", c.ArtifactsBucket)
	case c.ArtifactsDir != "":
		fmt.Fprintf(os.Stderr, "  Artifacts: %s\n", c.ArtifactsDir)
	default:
		fmt.Fprintln(os.Stderr, "  Artifacts: disabled")
	}
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
