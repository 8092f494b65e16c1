package registration

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/pkg/circuitbreaker"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=registration

type RecordRepository interface {
	// Save overwrites the stored registration with record.
	Save(ctx context.Context, record Record) error

	// Find returns the stored registration, or a NOT_FOUND error when none exists.
	Find(ctx context.Context) (*Record, error)
}

type recordRepository struct {
	store kvstore.Store
	key   string
}

func NewRecordRepository(store kvstore.Store, key string) RecordRepository {
	return &recordRepository{store: store, key: key}
}

func (r *recordRepository) Save(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewInternalServerError("failed to encode registration record", err)
	}

	if err := r.store.Set(ctx, r.key, string(payload)); err != nil {
		return storeError("failed to save registration record", err)
	}

	return nil
}

func (r *recordRepository) Find(ctx context.Context) (*Record, error) {
	payload, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, storeError("failed to load registration record", err)
	}

	if payload == "" {
		return nil, apperrors.NewNotFoundError("no registration record found", nil)
	}

	var record Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, apperrors.NewDatabaseError("stored registration record is corrupted", err)
	}

	return &record, nil
}

func storeError(message string, err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return apperrors.NewServiceUnavailableError("registration store is temporarily unavailable", err)
	}
	return apperrors.NewDatabaseError(message, err)
}
