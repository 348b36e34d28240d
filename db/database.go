package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"valheim-mod-manager/deploy"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the durable deployment-state backend. It implements
// deploy.StateStore over a SQLite database; each method is a single
// statement, so every call either fully applies or not at all.
type Store struct {
	db *gorm.DB
}

// Open initializes the SQLite database connection and migrates models.
func Open(dbPath string) (*Store, error) {
	// Configure GORM logger
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard log writer (os.Stdout)
		gormlogger.Config{
			SlowThreshold:             time.Second,     // Slow SQL threshold
			LogLevel:                  gormlogger.Warn, // Log level (Warn, Error, Info)
			IgnoreRecordNotFoundError: true,            // Ignore ErrRecordNotFound error
			ParameterizedQueries:      false,           // Log SQL queries with params
			Colorful:                  true,            // Enable color
		},
	)

	gdb, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := gdb.AutoMigrate(&DeploymentState{}, &DeploymentLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Store{db: gdb}, nil
}

// GetDeploymentState returns the tracked file states for a profile, keyed
// by absolute deployed path.
func (s *Store) GetDeploymentState(profileName string) (map[string]deploy.FileState, error) {
	var rows []DeploymentState
	if err := s.db.Where("profile_name = ?", profileName).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query deployment state: %w", err)
	}

	state := make(map[string]deploy.FileState, len(rows))
	for _, row := range rows {
		state[row.FilePath] = deploy.FileState{Hash: row.FileHash, ModID: row.ModID}
	}
	return state, nil
}

// SaveDeploymentState upserts the tracked state for one deployed file.
func (s *Store) SaveDeploymentState(filePath, fileHash, modID, profileName string) error {
	row := DeploymentState{
		ProfileName: profileName,
		FilePath:    filePath,
		FileHash:    fileHash,
		ModID:       modID,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_name"}, {Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_hash", "mod_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save deployment state for %s: %w", filePath, err)
	}
	return nil
}

// RemoveDeploymentState drops the tracked state for one file.
func (s *Store) RemoveDeploymentState(filePath, profileName string) error {
	err := s.db.Unscoped().
		Where("profile_name = ? AND file_path = ?", profileName, filePath).
		Delete(&DeploymentState{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove deployment state for %s: %w", filePath, err)
	}
	return nil
}

// ClearDeploymentState drops every tracked file for a profile.
func (s *Store) ClearDeploymentState(profileName string) error {
	err := s.db.Unscoped().
		Where("profile_name = ?", profileName).
		Delete(&DeploymentState{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear deployment state for %s: %w", profileName, err)
	}
	return nil
}

// LogDeployment records one completed engine operation.
func (s *Store) LogDeployment(profileName, action string, added, updated, removed int) error {
	row := DeploymentLog{
		ProfileName: profileName,
		Action:      action,
		Added:       added,
		Updated:     updated,
		Removed:     removed,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to log deployment: %w", err)
	}
	return nil
}

// RecentLogs returns the newest limit log rows for a profile.
func (s *Store) RecentLogs(profileName string, limit int) ([]DeploymentLog, error) {
	var rows []DeploymentLog
	err := s.db.Where("profile_name = ?", profileName).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query deployment logs: %w", err)
	}
	return rows, nil
}
