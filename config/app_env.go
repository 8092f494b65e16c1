package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// InitializeEnvFile loads ENV_FILE (comma separated, default ".env") without
// overriding variables already set in the process environment.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	var files []string
	for _, f := range strings.Split(utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}

	if err := godotenv.Load(files...); err != nil {
		logger.Warn("No .env file found or failed to load it", "files", files, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded from .env file", "files", files)
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	switch env := strings.ToLower(strings.TrimSpace(appEnv)); env {
	case "", "dev", "development", "local", "test", "testing":
		return nil
	default:
		return fmt.Errorf("--auto-migrate is not allowed when %s=%q (allowed: \"\", dev, development, local, test, testing)", AppEnvKey, env)
	}
}
