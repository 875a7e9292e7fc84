// Package sqlite stores conversation payloads in a local sqlite
// database, one row per blob key. Useful when running single-node
// without object storage.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lugia-ai/lugia/internal/domain"
)

type blob struct {
	Key       string `gorm:"primaryKey"`
	Payload   []byte
	UpdatedAt time.Time
}

func (blob) TableName() string { return "blobs" }

type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "lugia.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	sqlDB.Exec("PRAGMA journal_mode = WAL;")

	if err := db.AutoMigrate(blob{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	row := blob{Key: key, Payload: data, UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("sqlite put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var row blob
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return row.Payload, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&blob{}).
		Where("key LIKE ?", prefix+"%").
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("sqlite list %s: %w", prefix, err)
	}
	return keys, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&blob{}).
		Where("key = ?", key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("sqlite stat %s: %w", key, err)
	}
	return count > 0, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Delete(&blob{}, "key = ?", key)
	if res.Error != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
