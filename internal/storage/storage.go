// Package storage persists uploaded files and their validation results.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// File statuses as stored.
const (
	StatusUploaded  = "uploaded"
	StatusValidated = "validated"
	StatusFailed    = "failed"
)

// StoredFile is one uploaded RIPS file
type StoredFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	RecordType   string    `gorm:"size:2;not null;index" json:"record_type"`
	Path         string    `gorm:"size:512;not null" json:"-"`
	SizeBytes    int64     `json:"size_bytes"`
	Status       string    `gorm:"size:20;not null;default:uploaded" json:"status"`
	FindingCount int       `json:"finding_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidationRecord is one persisted finding for a stored file
type ValidationRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileID    uuid.UUID `gorm:"type:uuid;not null;index" json:"file_id"`
	Line      int       `json:"linea"`
	Field     string    `gorm:"size:255" json:"campo"`
	Message   string    `gorm:"type:text" json:"mensaje"`
	Severity  string    `gorm:"size:20;index" json:"severidad"`
	Validator string    `gorm:"size:50" json:"validator_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository wraps database access for files and findings
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Connect opens the database and runs migrations
func Connect(dsn string, log *zap.Logger) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&StoredFile{}, &ValidationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Repository{db: db, logger: log}, nil
}

// NewRepository wraps an existing database handle, used by tests
func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// CreateFile registers an uploaded file
func (r *Repository) CreateFile(file *StoredFile) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.Status == "" {
		file.Status = StatusUploaded
	}
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// GetFile loads one stored file by id
func (r *Repository) GetFile(id uuid.UUID) (*StoredFile, error) {
	var file StoredFile
	if err := r.db.First(&file, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to load file %s: %w", id, err)
	}
	return &file, nil
}

// ListFiles returns stored files, newest first
func (r *Repository) ListFiles(limit int) ([]StoredFile, error) {
	if limit <= 0 {
		limit = 100
	}
	var files []StoredFile
	if err := r.db.Order("created_at desc").Limit(limit).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// UpdateFileStatus records the outcome of a validation run
func (r *Repository) UpdateFileStatus(id uuid.UUID, status string, findingCount int) error {
	result := r.db.Model(&StoredFile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "finding_count": findingCount})
	if result.Error != nil {
		return fmt.Errorf("failed to update file %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("file %s not found", id)
	}
	return nil
}

// SaveFindings replaces the persisted findings of one file
func (r *Repository) SaveFindings(fileID uuid.UUID, records []ValidationRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&ValidationRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous findings: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			records[i].FileID = fileID
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to save findings: %w", err)
		}
		return nil
	})
}

// ListFindings returns the persisted findings of one file in line order
func (r *Repository) ListFindings(fileID uuid.UUID) ([]ValidationRecord, error) {
	var records []ValidationRecord
	if err := r.db.Where("file_id = ?", fileID).Order("line asc, id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return records, nil
}
