// Package config provides configuration management for the slip checker.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("storebackend", validateStoreBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.structErr(cfg); err != nil {
		return err
	}

	// The selected backend's connection block is only checked when it is in use
	switch cfg.Storage.Backend {
	case StoragePostgres:
		if err := cv.structErr(&cfg.Database); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case StorageRedis:
		if err := cv.structErr(&cfg.Redis); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func (cv *CustomValidator) structErr(s interface{}) error {
	err := cv.validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return formatValidationErrors(validationErrors)
	}
	return fmt.Errorf("validation failed: %w", err)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateStoreBackend validates the storage backend field
func validateStoreBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StorageMemory, StoragePostgres, StorageRedis:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Storage.Backend == StoragePostgres && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		if cfg.Storage.Backend == StorageMemory {
			return fmt.Errorf("production environment requires a persistent storage backend")
		}
		if cfg.Debug.PanicOnInvariant {
			return fmt.Errorf("debug.panic_on_invariant must be disabled in production")
		}
	}

	if cfg.Scheduler.Enabled {
		if cfg.Scheduler.StaleAfterSeconds <= 0 {
			return fmt.Errorf("scheduler.stale_after_seconds must be positive when the scheduler is enabled")
		}
		if _, err := cron.ParseStandard(cfg.Scheduler.ReaperCron); err != nil {
			return fmt.Errorf("invalid scheduler.reaper_cron %q: %w", cfg.Scheduler.ReaperCron, err)
		}
	}

	// Validate connection pool settings
	if cfg.Storage.Backend == StoragePostgres && cfg.Database.MinConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("min_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "storebackend":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: memory, postgres, redis\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
