package search

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartPolling refreshes the session every interval until StopPolling or ctx ends.
// A zero interval uses the configured one. A running poll is replaced.
func (s *Store) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.settings.PollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &poller{cancel: cancel, done: make(chan struct{})}

	s.pollMu.Lock()
	old := s.poll
	s.poll = p
	s.pollMu.Unlock()
	old.stop()

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
					s.logger.Warn("poll refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// StopPolling stops the running poll and waits for it to exit. It is a no-op when idle.
func (s *Store) StopPolling() {
	s.pollMu.Lock()
	p := s.poll
	s.poll = nil
	s.pollMu.Unlock()
	p.stop()
}

func (p *poller) stop() {
	if p == nil {
		return
	}
	p.cancel()
	<-p.done
}

// IsPolling reports whether a poll is running.
func (s *Store) IsPolling() bool {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	return s.poll != nil
}
