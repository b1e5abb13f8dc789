package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

const (
	defaultCountInterval = 500 * time.Millisecond
	countDateLayout      = "2006-01-02"
)

// CountService recomputes the badge counts from the fixtures view on a
// fixed cadence.
type CountService struct {
	repo     match.Repository
	interval time.Duration
	logger   *logging.Logger
	now      func() time.Time
	current  atomic.Pointer[match.Counts]
}

func NewCountService(repo match.Repository, interval time.Duration, logger *logging.Logger) *CountService {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultCountInterval
	}

	svc := &CountService{
		repo:     repo,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
	svc.current.Store(&match.Counts{})
	return svc
}

// Recompute derives counts from the current fixtures and publishes them.
func (s *CountService) Recompute() match.Counts {
	fixtures, _ := s.repo.Get(match.ViewFixtures)
	counts := match.ComputeCounts(fixtures, s.now().UTC().Format(countDateLayout))
	s.current.Store(&counts)
	return counts
}

func (s *CountService) Counts() match.Counts {
	return *s.current.Load()
}

func (s *CountService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Recompute()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Recompute()
		}
	}
}
