package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVSlot is the single table backing SQLSlot.
type KVSlot struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (KVSlot) TableName() string { return "kv_slots" }

// SQLSlot stores values in a relational database through gorm.
type SQLSlot struct {
	db *gorm.DB
}

// NewSQLSlot wraps a connected gorm DB. The kv_slots table must exist; see
// database.Migrate.
func NewSQLSlot(db *gorm.DB) *SQLSlot {
	return &SQLSlot{db: db}
}

func (s *SQLSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var row KVSlot
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *SQLSlot) Set(ctx context.Context, key string, value []byte) error {
	row := KVSlot{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLSlot) Name() string { return s.db.Dialector.Name() }

func (s *SQLSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
