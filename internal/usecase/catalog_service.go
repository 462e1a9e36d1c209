package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
)

// CatalogService is the read path for squad pickers.
type CatalogService struct {
	athleteRepo athlete.Repository
	teamRepo    team.Repository
}

func NewCatalogService(athleteRepo athlete.Repository, teamRepo team.Repository) *CatalogService {
	return &CatalogService{
		athleteRepo: athleteRepo,
		teamRepo:    teamRepo,
	}
}

func (s *CatalogService) ListAthletes(ctx context.Context) ([]athlete.Athlete, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListAthletes")
	defer span.End()

	items, err := s.athleteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}

	return items, nil
}

func (s *CatalogService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListTeams")
	defer span.End()

	items, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return items, nil
}
