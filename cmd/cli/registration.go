package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/akeren/go-registration-form/config"
	"github.com/akeren/go-registration-form/domain"
	"github.com/akeren/go-registration-form/domain/registration"
	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
	"gorm.io/gorm"
)

// requirePersistentBackend rejects stores that do not outlive the CLI process.
func requirePersistentBackend(backend string) error {
	switch backend {
	case kvstore.BackendMemory, "":
		return fmt.Errorf("STORE_BACKEND=%s keeps records only for the life of the process; set STORE_BACKEND to %s or %s",
			kvstore.BackendMemory, kvstore.BackendRedis, kvstore.BackendDatabase)
	default:
		return nil
	}
}

// openRegistrationService wires the configured store without the HTTP surface.
func openRegistrationService(logger *log.Logger) (registration.RegistrationService, func(), error) {
	appConfig := config.NewAppConfig()
	if err := requirePersistentBackend(appConfig.StoreBackend); err != nil {
		return nil, nil, err
	}

	cache := config.NewCacheConfig().NewCacheOrNil(logger)

	var db *gorm.DB
	if appConfig.StoreBackend == kvstore.BackendDatabase {
		var err error
		db, err = config.NewDatabase(logger, config.NewDBConfig())
		if err != nil {
			_ = config.CloseCache(cache, logger)
			return nil, nil, err
		}
	}

	store, err := config.NewStore(logger, appConfig.StoreBackend, db, cache)
	if err != nil {
		config.CloseDatabase(db, logger)
		_ = config.CloseCache(cache, logger)
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close registration store", "error", err)
		}
		config.CloseDatabase(db, logger)
		_ = config.CloseCache(cache, logger)
	}

	service := registration.NewRegistrationServiceFactory(store, logger, nil, domain.RegistrationOptions(appConfig)).CreateService()
	return service, cleanup, nil
}

func runShow(logger *log.Logger) error {
	service, cleanup, err := openRegistrationService(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record, err := service.GetRecord(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			fmt.Println("no registration stored")
			return nil
		}
		return err
	}
	return printJSON(record)
}

func runRegister(logger *log.Logger, args []string) error {
	req := &registration.RegisterRequest{}

	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	flags.StringVar(&req.LastName, "nom", "", "last name")
	flags.StringVar(&req.FirstName, "prenom", "", "first name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.BirthDate, "date", "", "birth date (YYYY-MM-DD)")
	flags.StringVar(&req.City, "ville", "", "city")
	flags.StringVar(&req.PostalCode, "cp", "", "postal code (5 digits)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	service, cleanup, err := openRegistrationService(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	view, err := service.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := printJSON(view); err != nil {
		return err
	}
	if view.Rejected() {
		return fmt.Errorf("registration rejected on %d field(s)", len(view.Errors))
	}
	return nil
}
