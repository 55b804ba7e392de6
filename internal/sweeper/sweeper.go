package sweeper

import (
	"context"
	"log"
	"time"

	"waiter-call-backend/config"
	"waiter-call-backend/internal/call"
)

// Service periodically marks calls that nobody acknowledged within the
// configured timeout as missed. It runs outside the request path; the
// state machine keeps missed calls recoverable via acknowledge.
type Service struct {
	cfg   *config.SweeperConfig
	calls *call.Service
	now   func() time.Time
}

// NewService creates a sweeper.
func NewService(cfg *config.SweeperConfig, calls *call.Service) *Service {
	return &Service{cfg: cfg, calls: calls, now: time.Now}
}

// Run executes the sweep loop until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Sweeper is disabled, skipping run.")
		return
	}
	log.Printf("Sweeper started with interval %s, pending timeout %s", s.cfg.Interval, s.cfg.PendingTimeout)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			log.Println("Sweeper shutting down.")
			return
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	cutoff := s.now().UTC().Add(-s.cfg.PendingTimeout)
	swept, err := s.calls.SweepOverdue(ctx, cutoff)
	if err != nil {
		log.Printf("Sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("Swept %d overdue pending calls to missed", swept)
	}
}
