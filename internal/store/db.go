// Package store manages the kintree database layer.
// It initializes GORM with SQLite and answers the genealogy lookups the
// tree view and the HTTP handlers need.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/vesaa/kintree/internal/config"
	"github.com/vesaa/kintree/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the GORM handle.
type Store struct {
	db *gorm.DB
}

// Open opens the database configured in cfg and runs AutoMigrate.
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported db_driver %q (use 'sqlite')", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// individuals and families reference each other
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&models.Tree{}, &models.Individual{}, &models.Family{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Printf("[db] opened %s/%s", cfg.DBDriver, cfg.DBPath)
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a database transaction. fn receives a Store bound to it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound maps gorm's sentinel to ErrNotFound and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// ── Trees ─────────────────────────────────────────────────────────────────────

// CreateTree inserts a new tree.
func (s *Store) CreateTree(ctx context.Context, t *models.Tree) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("creating tree %q: %w", t.Name, err)
	}
	return nil
}

// TreeByName returns the tree with the given name.
func (s *Store) TreeByName(ctx context.Context, name string) (*models.Tree, error) {
	var t models.Tree
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, notFound(err, "tree "+name)
	}
	return &t, nil
}

// FirstTree returns the oldest tree, used when no tree is configured or requested.
func (s *Store) FirstTree(ctx context.Context) (*models.Tree, error) {
	var t models.Tree
	if err := s.db.WithContext(ctx).Order("id").First(&t).Error; err != nil {
		return nil, notFound(err, "first tree")
	}
	return &t, nil
}
