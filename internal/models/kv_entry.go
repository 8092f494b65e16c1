package models

import "time"

// KeyValueEntry is one row of the database-backed key-value store.
type KeyValueEntry struct {
	Key       string    `gorm:"column:key;type:varchar(255);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (KeyValueEntry) TableName() string {
	return "kv_entries"
}
