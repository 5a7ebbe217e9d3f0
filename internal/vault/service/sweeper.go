package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically drops idle sessions from a Manager.
type Sweeper struct {
	sessions *Manager
	interval time.Duration
	done     chan struct{}
}

// NewSweeper creates a sweeper over sessions.
func NewSweeper(sessions *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (sw *Sweeper) Start(ctx context.Context) {
	slog.Info("session sweeper started", "interval", sw.interval)

	go func() {
		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if pruned := sw.sessions.PruneIdle(); pruned > 0 {
					slog.Info("pruned idle sessions", "count", pruned, "live", sw.sessions.Len())
				}
			case <-ctx.Done():
				slog.Info("session sweeper stopping")
				close(sw.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (sw *Sweeper) Wait() {
	<-sw.done
}
