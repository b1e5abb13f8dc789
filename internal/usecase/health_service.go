package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

const defaultHealthInterval = 10 * time.Second

// HealthService polls the remote healthcheck. The server is assumed healthy
// until a check says otherwise.
type HealthService struct {
	source   HealthSource
	interval time.Duration
	logger   *logging.Logger
	healthy  atomic.Bool
}

func NewHealthService(source HealthSource, interval time.Duration, logger *logging.Logger) *HealthService {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	svc := &HealthService{source: source, interval: interval, logger: logger}
	svc.healthy.Store(true)
	return svc
}

func (s *HealthService) IsHealthy() bool {
	return s.healthy.Load()
}

// Check runs one healthcheck and records the outcome.
func (s *HealthService) Check(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.HealthService.Check")
	defer span.End()

	_, err := s.source.FetchHealthcheck(ctx)
	healthy := err == nil
	if previous := s.healthy.Swap(healthy); previous != healthy {
		if healthy {
			s.logger.InfoContext(ctx, "remote api healthy again")
		} else {
			s.logger.WarnContext(ctx, "remote api unhealthy", "error", err)
		}
	}
	return healthy
}

func (s *HealthService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}
