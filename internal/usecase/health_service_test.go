package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

type scriptedHealth struct {
	results []error
	calls   int
}

func (s *scriptedHealth) FetchHealthcheck(context.Context) (HealthStatus, error) {
	err := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	if err != nil {
		return HealthStatus{}, err
	}
	return HealthStatus{Status: "ok"}, nil
}

func TestHealthService_TracksLastCheck(t *testing.T) {
	t.Parallel()

	source := &scriptedHealth{results: []error{errors.New("timeout"), nil}}
	svc := NewHealthService(source, 0, logging.NewNop())
	if !svc.IsHealthy() {
		t.Fatalf("server must be assumed healthy before the first check")
	}

	if svc.Check(context.Background()) || svc.IsHealthy() {
		t.Fatalf("expected unhealthy after failed check")
	}
	if !svc.Check(context.Background()) || !svc.IsHealthy() {
		t.Fatalf("expected healthy after ok check")
	}
}
