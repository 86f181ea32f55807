package config

import (
	"fmt"
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

// ValidateConfig checks every requirement and reports all failures at once.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError
	require := func(field, value string) {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	require("JWT_SECRET", cfg.JWTSecret)

	switch cfg.DBDriver {
	case "postgres":
		require("DB_HOST", cfg.DBHost)
		require("DB_PORT", cfg.DBPort)
		require("DB_USER", cfg.DBUser)
		require("DB_NAME", cfg.DBName)
		if cfg.Env == Production || cfg.Env == CI {
			require("DB_PASSWORD", cfg.DBPassword)
		}
	case "sqlite":
		require("SQLITE_PATH", cfg.SQLitePath)
		if cfg.Env == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageBackend {
	case "local":
		require("MEDIA_ROOT", cfg.MediaRoot)
	case "s3":
		require("S3_BUCKET_NAME", cfg.S3Bucket)
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_BACKEND", Message: fmt.Sprintf("unsupported backend %q", cfg.StorageBackend)})
	}

	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{Field: "JWT_TTL", Message: "must be positive"})
	}
	if cfg.RateLimitWrites <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WRITES", Message: "must be positive"})
	}

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
}
