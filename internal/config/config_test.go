// Package config provides configuration management for the slip checker.
package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	slipcheckName                = "slipcheck"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != slipcheckName {
		t.Errorf("expected app name '%s', got '%s'", slipcheckName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.Storage.Backend != StoragePostgres {
		t.Errorf("expected storage backend '%s', got '%s'", StoragePostgres, cfg.Storage.Backend)
	}

	if !cfg.Enrichment.InjuryFeed.Enabled || cfg.Enrichment.InjuryFeed.BaseURL != "http://localhost:9090" {
		t.Errorf("expected injury feed enabled at localhost:9090, got %+v", cfg.Enrichment.InjuryFeed)
	}

	if cfg.StaleAfter() != 5*time.Minute {
		t.Errorf("expected stale threshold 5m, got %v", cfg.StaleAfter())
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("SLIPCHECK_APP_NAME", testAppName)

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadWithDefaultsNoFile tests that defaults alone produce a valid config
func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("expected default backend '%s', got '%s'", StorageMemory, cfg.Storage.Backend)
	}

	if cfg.Enrichment.Concurrency != 8 {
		t.Errorf("expected default concurrency 8, got %d", cfg.Enrichment.Concurrency)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestLoadWithDefaultsEnvOverride tests env overrides on defaulted keys
func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("SLIPCHECK_STORAGE_BACKEND", StorageRedis)

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Storage.Backend != StorageRedis {
		t.Errorf("expected backend '%s' from environment, got '%s'", StorageRedis, cfg.Storage.Backend)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidBackend tests validation of the storage backend
func TestValidateInvalidBackend(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Storage.Backend = "sqlite"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for unknown backend")
	}

	if !strings.Contains(err.Error(), "memory, postgres, redis") {
		t.Errorf("expected backend validation message, got: %v", err)
	}
}

// TestValidateDatabaseOnlyForPostgres tests that the database block is checked only when used
func TestValidateDatabaseOnlyForPostgres(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Database.Password = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing database password")
	}

	cfg.Storage.Backend = StorageMemory
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected memory backend to ignore database block, got %v", err)
	}
}

// TestValidateInjuryFeedRequiresURL tests the conditional URL requirement
func TestValidateInjuryFeedRequiresURL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Enrichment.InjuryFeed.BaseURL = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for enabled feed without URL")
	}

	cfg.Enrichment.InjuryFeed.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected disabled feed to validate, got %v", err)
	}
}

// TestValidateProductionRules tests production-only cross-field rules
func TestValidateProductionRules(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for ssl_mode=disable in production")
	}

	cfg.Database.SSLMode = "require"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected production config to validate, got %v", err)
	}

	cfg.Storage.Backend = StorageMemory
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for memory backend in production")
	}
}

// TestValidateSchedulerCron tests reaper schedule parsing
func TestValidateSchedulerCron(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Scheduler.ReaperCron = "every minute please"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for bad cron spec")
	}

	cfg.Scheduler.ReaperCron = "*/5 * * * *"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected standard cron spec to validate, got %v", err)
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsDevelopment() || cfg.IsStaging() {
		t.Error("expected other environment checks to return false")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestResolvePath tests config path precedence
func TestResolvePath(t *testing.T) {
	t.Setenv("SLIPCHECK_CONFIG_PATH", "/etc/slipcheck.yaml")

	if got := ResolvePath("local.yaml"); got != "local.yaml" {
		t.Errorf("expected flag value to win, got %s", got)
	}
	if got := ResolvePath(""); got != "/etc/slipcheck.yaml" {
		t.Errorf("expected env path, got %s", got)
	}

	os.Unsetenv("SLIPCHECK_CONFIG_PATH")
	if got := ResolvePath(""); got != DefaultConfigPath {
		t.Errorf("expected default path, got %s", got)
	}
}

// TestOverlaySecrets tests applying a secrets overlay
func TestOverlaySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "file"

	overlaySecretsOnConfig(cfg, &SecretsOverlay{RedisPassword: "r", InjuryFeedAPIKey: "k"})

	if cfg.Database.Password != "file" {
		t.Errorf("expected empty overlay value to keep file password, got %s", cfg.Database.Password)
	}
	if cfg.Redis.Password != "r" || cfg.Enrichment.InjuryFeed.APIKey != "k" {
		t.Errorf("expected overlay applied, got redis=%q key=%q", cfg.Redis.Password, cfg.Enrichment.InjuryFeed.APIKey)
	}
}
