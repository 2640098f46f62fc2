package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"kitchenbot/internal/models"
)

// ErrRunNotFound is returned when no run matches a lookup
var ErrRunNotFound = errors.New("run not found")

// Store is the run log: one record per evaluation run with its kitchen
// events and the bots' journals
type Store struct {
	db *gorm.DB
}

// Open connects to the run log. driver is "sqlite3" or "postgres".
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.LogMode(false)

	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		// every connection would get its own empty database
		db.DB().SetMaxOpenConns(1)
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
		db.DB().SetConnMaxLifetime(time.Hour)
	}

	return &Store{db: db}, nil
}

// Migrate creates or updates the run log tables
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.RunRecord{},
		&models.RunEvent{},
		&models.AgentActionLog{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate run log: %w", err)
	}
	return nil
}

// SaveRun stores a run together with its events and actions
func (s *Store) SaveRun(rec *models.RunRecord) error {
	tx := s.db.Begin()
	if err := tx.Create(rec).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save run %s: %w", rec.RunID, err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rec.RunID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first, without their events.
// An empty scenario matches every run.
func (s *Store) Runs(scenario string, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.Order("id desc").Limit(limit)
	if scenario != "" {
		q = q.Where("scenario = ?", scenario)
	}

	var runs []models.RunRecord
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Run loads one run with its events and actions
func (s *Store) Run(runID string) (*models.RunRecord, error) {
	var rec models.RunRecord
	err := s.db.
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("run_id = ?", runID).
		First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return &rec, nil
}

// BestRun returns the highest scoring run of a scenario
func (s *Store) BestRun(scenario string) (*models.RunRecord, error) {
	var rec models.RunRecord
	err := s.db.Where("scenario = ?", scenario).Order("score desc").Order("id asc").First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("%w: no runs for %s", ErrRunNotFound, scenario)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load best run for %s: %w", scenario, err)
	}
	return &rec, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
