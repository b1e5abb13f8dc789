package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/news"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

const defaultNewsInterval = 60 * time.Second

// NewsService keeps the latest non-empty news list.
type NewsService struct {
	source   NewsSource
	devices  DeviceIDProvider
	interval time.Duration
	logger   *logging.Logger

	mu       sync.RWMutex
	articles []news.Article
}

func NewNewsService(source NewsSource, devices DeviceIDProvider, interval time.Duration, logger *logging.Logger) *NewsService {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultNewsInterval
	}
	return &NewsService{source: source, devices: devices, interval: interval, logger: logger}
}

// Refresh fetches news once. An empty or failed response leaves the previous
// list in place.
func (s *NewsService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsService.Refresh")
	defer span.End()

	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return err
	}

	articles, err := s.source.FetchNews(ctx, deviceID)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}

	s.mu.Lock()
	s.articles = append([]news.Article(nil), articles...)
	s.mu.Unlock()
	return nil
}

func (s *NewsService) Latest() []news.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]news.Article{}, s.articles...)
}

func (s *NewsService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "refresh news failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
