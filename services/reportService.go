package services

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"context"
)

type ReportService struct {
	repository *repositories.ReportRepository
}

func NewReportService(repository *repositories.ReportRepository) *ReportService {
	return &ReportService{repository: repository}
}

func (s *ReportService) CreateRequest(ctx context.Context, report *models.MedicalReport) error {
	return s.repository.CreateRequest(ctx, report)
}

func (s *ReportService) FeedByUser(ctx context.Context, userID int64) ([]models.MedicalReport, error) {
	return s.repository.FeedByUser(ctx, userID)
}

func (s *ReportService) GetByID(ctx context.Context, id uint) (*models.MedicalReport, error) {
	return s.repository.GetByID(ctx, id)
}
