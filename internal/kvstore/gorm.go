package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akeren/go-registration-form/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps entries in the kv_entries table. Works with the postgres and sqlite drivers.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func keyColumn() clause.Column {
	return clause.Column{Name: "key"}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	var entry models.KeyValueEntry
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: keyColumn(), Value: key}).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kvstore: database get %q: %w", key, err)
	}

	return entry.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	entry := models.KeyValueEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{keyColumn()},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kvstore: database set %q: %w", key, err)
	}

	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close is a no-op: the *gorm.DB belongs to the application config.
func (s *GormStore) Close() error {
	return nil
}
