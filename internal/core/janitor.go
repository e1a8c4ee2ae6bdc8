package core

// janitor.go evicts import sessions nobody has touched for the session TTL.
//
// Sessions live only in memory. An operator who walks away from the preview
// screen leaves the parsed file behind; the janitor sweeps those up. A
// session that is submitting is never evicted.

import (
	"context"
	"log/slog"
	"time"
)

// RunJanitor sweeps expired sessions every half TTL (at least every minute)
// until ctx is cancelled.
func (s *Service) RunJanitor(ctx context.Context) {
	interval := s.opts.SessionTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}

	slog.Info("session janitor started", "ttl", s.opts.SessionTTL, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := s.EvictExpired(); n > 0 {
				slog.Info("evicted idle import sessions", "count", n)
			}
		}
	}
}

// EvictExpired removes sessions idle longer than the TTL and returns how many.
func (s *Service) EvictExpired() int {
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.RLock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.expired(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.remove(id)
	}
	return len(expired)
}
