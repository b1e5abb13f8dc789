package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchcentre/internal/platform/cache"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TeamCategoryClub          = "club"
	TeamCategoryInternational = "international"

	competitionsCacheKey = "competitions"
	teamsCacheKeyPrefix  = "teams:"
)

// ReferenceService serves competitions and team lists through a TTL cache.
type ReferenceService struct {
	source ReferenceSource
	cache  *cache.Store[[]string]
	logger *logging.Logger
}

func NewReferenceService(source ReferenceSource, store *cache.Store[[]string], logger *logging.Logger) *ReferenceService {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore[[]string](0)
	}
	return &ReferenceService{source: source, cache: store, logger: logger}
}

func (s *ReferenceService) Competitions(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.Competitions")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, competitionsCacheKey, func(ctx context.Context) ([]string, error) {
		return s.source.FetchCompetitions(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("load competitions: %w", err)
	}
	return cloneNames(value), nil
}

func (s *ReferenceService) Teams(ctx context.Context, category string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.Teams", attribute.String("team.category", category))
	defer span.End()

	category = strings.ToLower(strings.TrimSpace(category))
	switch category {
	case TeamCategoryClub, TeamCategoryInternational:
	default:
		return nil, fmt.Errorf("%w: unknown team category %q", ErrInvalidInput, category)
	}

	value, err := s.cache.GetOrLoad(ctx, teamsCacheKeyPrefix+category, func(ctx context.Context) ([]string, error) {
		return s.source.FetchTeams(ctx, category)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s teams: %w", category, err)
	}
	return cloneNames(value), nil
}

// Invalidate drops every cached list.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	s.cache.DeletePrefix(ctx, competitionsCacheKey)
	s.cache.DeletePrefix(ctx, teamsCacheKeyPrefix)
}

func cloneNames(names []string) []string {
	return append([]string{}, names...)
}
