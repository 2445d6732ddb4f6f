package services

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"context"
)

type DirectoryService struct {
	repository *repositories.DirectoryRepository
}

func NewDirectoryService(repository *repositories.DirectoryRepository) *DirectoryService {
	return &DirectoryService{repository: repository}
}

func (s *DirectoryService) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return s.repository.CreateDoctor(ctx, doctor)
}

func (s *DirectoryService) GetDoctorByID(ctx context.Context, id string) (*models.Doctor, error) {
	return s.repository.GetDoctorByID(ctx, id)
}

func (s *DirectoryService) GetAllDoctors(ctx context.Context) ([]models.Doctor, error) {
	return s.repository.GetAllDoctors(ctx)
}

func (s *DirectoryService) UpdateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return s.repository.UpdateDoctor(ctx, doctor)
}

func (s *DirectoryService) DeleteDoctor(ctx context.Context, id string) error {
	return s.repository.DeleteDoctor(ctx, id)
}

func (s *DirectoryService) CreateDepartment(ctx context.Context, department *models.Department) error {
	return s.repository.CreateDepartment(ctx, department)
}

func (s *DirectoryService) GetAllDepartments(ctx context.Context) ([]models.Department, error) {
	return s.repository.GetAllDepartments(ctx)
}

func (s *DirectoryService) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	return s.repository.GetDepartmentByID(ctx, id)
}
