package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-structurer/internal/models"
)

type ParseResultRepository interface {
	Create(result *models.ParseResult) error
	FindByID(id uuid.UUID) (*models.ParseResult, error)
	FindRecent(limit int) ([]models.ParseResult, error)
}

type parseResultRepository struct {
	db *gorm.DB
}

func NewParseResultRepository(db *gorm.DB) ParseResultRepository {
	return &parseResultRepository{db: db}
}

func (r *parseResultRepository) Create(result *models.ParseResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create parse result: %w", err)
	}
	return nil
}

func (r *parseResultRepository) FindByID(id uuid.UUID) (*models.ParseResult, error) {
	var result models.ParseResult
	if err := r.db.Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("parse result %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find parse result: %w", err)
	}
	return &result, nil
}

func (r *parseResultRepository) FindRecent(limit int) ([]models.ParseResult, error) {
	var results []models.ParseResult
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list parse results: %w", err)
	}

	return results, nil
}
