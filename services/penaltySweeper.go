package services

import (
	"context"
	"log"
	"time"
)

// PenaltySweeper periodically runs the no-show sweep in the background. The
// sweep also runs on every queue read; this loop only bounds how stale the
// data can get between reads, so the two triggers are interchangeable.
type PenaltySweeper struct {
	service  *TokenService
	interval time.Duration
	stopChan chan struct{}
}

func NewPenaltySweeper(service *TokenService, interval time.Duration) *PenaltySweeper {
	return &PenaltySweeper{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *PenaltySweeper) Start() {
	log.Printf("Penalty sweeper started (every %s)", s.interval)
	go s.run()
}

// Stop terminates the loop.
func (s *PenaltySweeper) Stop() {
	close(s.stopChan)
	log.Println("Penalty sweeper stopped")
}

func (s *PenaltySweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.service.Sweep(ctx); err != nil {
				log.Printf("Background penalty sweep failed: %v", err)
			}
			cancel()
		case <-s.stopChan:
			return
		}
	}
}
