package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akeren/go-registration-form/config"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/migrations"
	"github.com/akeren/go-registration-form/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := runMigrate(logger, args[1:]); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "show":
		if err := runShow(logger); err != nil {
			logger.Error("Failed to read registration", "error", err.Error())
			os.Exit(1)
		}
		return

	case "register":
		if err := runRegister(logger, args[1:]); err != nil {
			logger.Error("Registration failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// runMigrate handles "migrate", "migrate down N" and "migrate version".
func runMigrate(logger *log.Logger, args []string) error {
	dbCfg := config.NewDBConfig()
	db, err := config.NewDatabase(logger, dbCfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	migrationCfg := migrations.Config{
		Dir:    utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations"),
		Driver: dbCfg.Driver,
		Logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "", "up":
		if err := migrations.Up(ctx, sqlDB, migrationCfg); err != nil {
			return err
		}
		logger.Info("Database migrations completed")
		return nil

	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		if err := migrations.Down(ctx, sqlDB, migrationCfg, steps); err != nil {
			return err
		}
		logger.Info("Database migrations rolled back", "steps", steps)
		return nil

	case "version":
		version, dirty, ok, err := migrations.Version(ctx, sqlDB, migrationCfg)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no migrations applied")
			return nil
		}
		fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		return nil

	default:
		return fmt.Errorf("unknown migrate subcommand %q", sub)
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate [up]      Apply pending SQL migrations and exit")
	fmt.Println("  migrate down [N]  Roll back the last N migrations (default 1)")
	fmt.Println("  migrate version   Print the current schema version")
	fmt.Println("  show              Print the stored registration from STORE_BACKEND")
	fmt.Println("  register [flags]  Validate and store a registration (-nom -prenom -email -date -ville -cp)")
}
