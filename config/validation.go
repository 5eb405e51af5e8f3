package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	errs := databaseErrors(cfg, env)

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required"})
	} else if env == Production && len(cfg.JWTSecret) < 32 {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be at least 32 characters in production"})
	}

	if env == Production && cfg.AdminPassword == "" {
		errs = append(errs, ValidationError{Field: "ADMIN_PASSWORD", Message: "is required in production"})
	}

	return errs.orNil()
}

// ValidateDatabase checks only the database settings.
func ValidateDatabase(cfg *Config) error {
	return databaseErrors(cfg, GetEnvironment()).orNil()
}

func databaseErrors(cfg *Config, env Environment) ValidationErrors {
	var errs ValidationErrors
	switch cfg.DBDriver {
	case "postgres":
		for field, value := range map[string]string{
			"DB_HOST":     cfg.DBHost,
			"DB_USER":     cfg.DBUser,
			"DB_NAME":     cfg.DBName,
			"DB_PASSWORD": cfg.DBPassword,
		} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required for the postgres driver"})
			}
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}
	return errs
}

func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	sort.Slice(e, func(i, j int) bool { return e[i].Field < e[j].Field })
	return e
}
