package sweeper

import (
	"context"
	"time"
	"vietqr-order-service/internal/service"

	"go.uber.org/zap"
)

// Sweeper periodically expires orders stuck in awaiting_payment past the
// grace period. It reuses the reconciler's compare-and-set transition, so a
// success webhook racing the sweep resolves the same way any concurrent
// trigger does.
type Sweeper struct {
	reconciler  service.Reconciler
	gracePeriod time.Duration
	interval    time.Duration
	logger      *zap.SugaredLogger
	stop        chan struct{}
	done        chan struct{}
}

func New(reconciler service.Reconciler, gracePeriod, interval time.Duration, logger *zap.SugaredLogger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		reconciler:  reconciler,
		gracePeriod: gracePeriod,
		interval:    interval,
		logger:      logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	expired, err := s.reconciler.ExpireStale(ctx, time.Now().Add(-s.gracePeriod))
	if err != nil {
		s.logger.Errorw("payment expiry sweep", "err", err)
		return
	}
	if expired > 0 {
		s.logger.Infow("payment expiry sweep", "expired", expired)
	}
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
