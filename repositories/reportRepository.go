package repositories

import (
	"OPDQueue/database"
	"OPDQueue/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ReportRepository struct{}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// CreateRequest records a pending report against an existing token number.
func (r *ReportRepository) CreateRequest(ctx context.Context, report *models.MedicalReport) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.QueueToken{}).
			Where("token_number = ?", report.TokenNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to verify token number: %w", err)
		}
		if count == 0 {
			return ErrTokenNotFound
		}

		report.Status = models.ReportPending
		report.ReportURL = ""
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report request: %w", err)
		}
		return nil
	})
}

// FeedByUser returns the reports attached to any token the user has ever
// held, newest first.
func (r *ReportRepository) FeedByUser(ctx context.Context, userID int64) ([]models.MedicalReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tokenNumbers []int
	if err := database.DB.WithContext(ctx).Model(&models.QueueToken{}).
		Where("user_id = ?", userID).
		Pluck("token_number", &tokenNumbers).Error; err != nil {
		return nil, fmt.Errorf("failed to collect user token numbers: %w", err)
	}
	if len(tokenNumbers) == 0 {
		return []models.MedicalReport{}, nil
	}

	var reports []models.MedicalReport
	if err := database.DB.WithContext(ctx).
		Where("token_number IN ?", tokenNumbers).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to load report feed: %w", err)
	}
	return reports, nil
}

// GetByID returns one report record.
func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*models.MedicalReport, error) {
	var report models.MedicalReport
	err := database.DB.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}
