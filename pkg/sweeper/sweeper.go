// Package sweeper runs the background expiry pass. The service already marks
// expiry lazily when a request is touched; the sweeper bounds how stale an
// untouched request can stay.
package sweeper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweep is the slice of the bridge service the sweeper drives.
type Sweep interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Engine periodically sweeps expired bridge requests.
type Engine struct {
	svc      Sweep
	interval time.Duration
	logger   *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a sweeper engine. A non-positive interval falls back to
// one minute.
func NewEngine(svc Sweep, interval time.Duration, logger *zap.Logger) *Engine {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Engine{
		svc:      svc,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs until
// Stop is called or the context is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting expiry sweeper", zap.Duration("interval", e.interval))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stopCh:
				return
			case <-ticker.C:
				e.sweep(ctx)
			}
		}
	}()
}

// Stop stops the sweep loop and waits for an in-flight pass to finish.
func (e *Engine) Stop() {
	close(e.stopCh)
	e.wg.Wait()
	e.logger.Info("Expiry sweeper stopped")
}

func (e *Engine) sweep(ctx context.Context) {
	swept, err := e.svc.SweepExpired(ctx)
	if err != nil {
		e.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		e.logger.Info("Expiry sweep completed", zap.Int("swept", swept))
	}
}
