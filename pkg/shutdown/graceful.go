package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/job-hunter/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain stop function to Stoppable
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Graceful blocks until one of signals arrives, then stops each Stoppable in
// order under a shared timeout
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, stoppables ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	Stop(timeout, log, stoppables...)
}

// Stop runs the shutdown sequence without waiting for a signal
func Stop(timeout time.Duration, log *logging.Logger, stoppables ...Stoppable) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := 0
	for _, s := range stoppables {
		if err := s.Shutdown(ctx); err != nil {
			failed++
			log.Warn("shutdown step failed", "err", err)
		}
	}

	if failed > 0 {
		log.Warn("graceful shutdown completed with errors", "failed", failed)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
