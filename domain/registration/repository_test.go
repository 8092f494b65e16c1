package registration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/pkg/circuitbreaker"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRecordRepository_SaveUsesStorageFormat(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repository := NewRecordRepository(store, "userRegistration")

	require.NoError(t, repository.Save(ctx, validRecord()))

	raw, err := store.Get(ctx, "userRegistration")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nom": "Dupont",
		"prenom": "Jean",
		"email": "jean.dupont@example.com",
		"dateNaissance": "1990-05-20",
		"ville": "Paris",
		"codePostal": "75001"
	}`, raw)

	record, err := repository.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, validRecord(), *record)
}

func TestRecordRepository_FindMissing(t *testing.T) {
	_, err := NewRecordRepository(kvstore.NewMemoryStore(), "userRegistration").Find(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRecordRepository_FindCorrupted(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "userRegistration", "{not json"))

	_, err := NewRecordRepository(store, "userRegistration").Find(ctx)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabaseError))
}

func TestRecordRepository_StoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		expected string
	}{
		{name: "generic failure", storeErr: errors.New("connection reset"), expected: apperrors.ErrorTypeDatabaseError},
		{name: "open circuit", storeErr: fmt.Errorf("redis: %w", circuitbreaker.ErrCircuitOpen), expected: apperrors.ErrorTypeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := kvstore.NewMockStore(ctrl)
			store.EXPECT().Set(gomock.Any(), "userRegistration", gomock.Any()).Return(tt.storeErr)
			store.EXPECT().Get(gomock.Any(), "userRegistration").Return("", tt.storeErr)

			repository := NewRecordRepository(store, "userRegistration")

			err := repository.Save(context.Background(), validRecord())
			assert.True(t, apperrors.IsType(err, tt.expected))
			assert.ErrorIs(t, err, tt.storeErr)

			_, err = repository.Find(context.Background())
			assert.True(t, apperrors.IsType(err, tt.expected))
		})
	}
}
