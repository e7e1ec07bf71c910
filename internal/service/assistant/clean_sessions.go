package assistant

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultSessionCleanupInterval = time.Hour

// StartSessionCleaner evicts sessions older than ttl every interval until ctx
// is done. A non-positive ttl disables eviction and starts nothing.
func (s *Service) StartSessionCleaner(ctx context.Context, ttl, interval time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if interval <= 0 {
		interval = DefaultSessionCleanupInterval
	}
	go s.cleanupLoop(ctx, ttl, interval)
	return true
}

func (s *Service) cleanupLoop(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.cleanupExpiredSessions(ctx, ttl); err != nil {
				s.logger.Warn("cleanup sessions failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) cleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int, error) {
	removed, err := s.store.Sweep(ctx, s.now().Add(-ttl))
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", removed), zap.Duration("ttl", ttl))
	}
	return removed, err
}
