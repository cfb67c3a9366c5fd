package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rich-automation/lotto-action/domain/entities"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Lottery account and purchase configuration
	LottoID       string
	LottoPassword string
	Amount        int // Combinations to buy per run, clamped to 1-5

	// Ticket store configuration
	GitHubToken      string
	GitHubRepository string // "owner/repo"

	// Timezone used for ticket dates
	Timezone string

	// Browser configuration
	BrowserLaunchArgs []string
	BrowserPath       string
	ResultsURL        string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "production" or "test"
}

// HasCredentials returns true if both lottery credentials are set
func (c *Config) HasCredentials() bool {
	return c.LottoID != "" && c.LottoPassword != ""
}

var (
	instance *Config
	loadErr  error
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance, loading it on first use
func Get() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance, nil
	}

	once.Do(func() {
		instance, loadErr = Load(viper.New())
	})
	return instance, loadErr
}

// envBindings maps config keys to the environment variables that may carry them,
// action inputs first
var envBindings = map[string][]string{
	"lotto_id":            {"INPUT_LOTTO-ID", "LOTTO_ID"},
	"lotto_password":      {"INPUT_LOTTO-PASSWORD", "LOTTO_PASSWORD"},
	"amount":              {"INPUT_AMOUNT", "LOTTO_AMOUNT"},
	"github_token":        {"INPUT_TOKEN", "GITHUB_TOKEN"},
	"github_repository":   {"INPUT_REPOSITORY", "GITHUB_REPOSITORY"},
	"timezone":            {"INPUT_TIMEZONE", "LOTTO_TIMEZONE"},
	"browser_launch_args": {"BROWSER_LAUNCH_ARGS"},
	"browser_path":        {"BROWSER_PATH"},
	"results_url":         {"RESULTS_URL"},
	"log_level":           {"INPUT_LOG-LEVEL", "LOG_LEVEL"},
	"log_format":          {"LOG_FORMAT"},
	"environment":         {"ENVIRONMENT"},
}

// Load reads configuration from the environment through v
func Load(v *viper.Viper) (*Config, error) {
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault("timezone", "Asia/Seoul")
	v.SetDefault("browser_launch_args", "--no-sandbox")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("environment", "production")

	config := &Config{
		LottoID:           strings.TrimSpace(v.GetString("lotto_id")),
		LottoPassword:     v.GetString("lotto_password"),
		Amount:            entities.ClampAmount(v.GetString("amount")),
		GitHubToken:       v.GetString("github_token"),
		GitHubRepository:  strings.TrimSpace(v.GetString("github_repository")),
		Timezone:          v.GetString("timezone"),
		BrowserLaunchArgs: strings.Fields(v.GetString("browser_launch_args")),
		BrowserPath:       v.GetString("browser_path"),
		ResultsURL:        v.GetString("results_url"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		Environment:       v.GetString("environment"),
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.GitHubToken == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN is required")
		}
		if config.GitHubRepository == "" {
			return nil, fmt.Errorf("GITHUB_REPOSITORY is required")
		}
	}

	return config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	loadErr = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Amount:           entities.DefaultPurchaseAmount,
		GitHubRepository: "owner/tickets",
		Timezone:         "Asia/Seoul",
		LogLevel:         "info",
		LogFormat:        "text",
		Environment:      "test",
	}
}
