package services

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"context"
	"log"
	"time"
)

type TokenService struct {
	repository *repositories.TokenRepository
}

func NewTokenService(repository *repositories.TokenRepository) *TokenService {
	return &TokenService{repository: repository}
}

func (s *TokenService) Admit(ctx context.Context, input repositories.AdmissionInput) (*models.QueueToken, error) {
	return s.repository.Admit(ctx, input)
}

func (s *TokenService) GetByID(ctx context.Context, id uint) (*models.QueueToken, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *TokenService) Update(ctx context.Context, id uint, update repositories.TokenUpdate) (*models.QueueToken, error) {
	return s.repository.ApplyUpdate(ctx, id, update)
}

func (s *TokenService) Delete(ctx context.Context, id uint) error {
	return s.repository.Delete(ctx, id)
}

func (s *TokenService) CheckIn(ctx context.Context, id uint) (*models.QueueToken, error) {
	return s.repository.CheckIn(ctx, id)
}

// ActiveQueue runs the penalty sweep and then builds the queue view. A sweep
// failure degrades to serving the un-swept queue rather than failing the read.
func (s *TokenService) ActiveQueue(ctx context.Context) ([]models.QueueToken, error) {
	if err := s.repository.ProcessPenalties(ctx, time.Now()); err != nil {
		log.Printf("Penalty sweep failed, serving queue without it: %v", err)
	}
	return s.repository.ActiveQueue(ctx)
}

// Sweep exposes the penalty pass for the background sweeper.
func (s *TokenService) Sweep(ctx context.Context) error {
	return s.repository.ProcessPenalties(ctx, time.Now())
}
