package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/service"
)

// EscalationWorker drives the periodic escalation sweep. The first sweep
// runs immediately on start, then on every tick.
type EscalationWorker struct {
	escalations *service.EscalationService
	interval    time.Duration
	logger      *zap.Logger
	stop        chan struct{}
	done        chan struct{}
}

// NewEscalationWorker constructs the worker.
func NewEscalationWorker(escalations *service.EscalationService, interval time.Duration, logger *zap.Logger) *EscalationWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &EscalationWorker{
		escalations: escalations,
		interval:    interval,
		logger:      logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (w *EscalationWorker) Start() {
	w.logger.Info("escalation worker started", zap.Duration("interval", w.interval))
	go w.run()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (w *EscalationWorker) Stop() {
	close(w.stop)
	<-w.done
	w.logger.Info("escalation worker stopped")
}

func (w *EscalationWorker) run() {
	defer close(w.done)

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stop:
			return
		}
	}
}

func (w *EscalationWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	if err := w.escalations.RunSweep(ctx); err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
	}
}
