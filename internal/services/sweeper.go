package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes uploads and renderings older than the
// retention window.
type Sweeper interface {
	Start(ctx context.Context)
	Stop()
	SweepOnce() int
}

type sweeper struct {
	storage   StorageService
	retention time.Duration
	interval  time.Duration
	log       *logrus.Logger
	now       func() time.Time
	wg        sync.WaitGroup
	stopOnce  sync.Once
	stopChan  chan struct{}
}

func NewSweeper(storage StorageService, retention, interval time.Duration, log *logrus.Logger) Sweeper {
	return &sweeper{
		storage:   storage,
		retention: retention,
		interval:  interval,
		log:       log,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start implements Sweeper. It is a no-op when retention is disabled.
func (s *sweeper) Start(ctx context.Context) {
	if s.retention <= 0 {
		s.log.Info("🧹 File retention disabled, sweeper not started")
		return
	}

	s.wg.Add(1)
	go s.run(ctx)
	s.log.WithFields(logrus.Fields{
		"retention": s.retention.String(),
		"interval":  s.interval.String(),
	}).Info("🧹 Sweeper started")
}

// Stop implements Sweeper.
func (s *sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.log.Info("✅ Sweeper stopped")
}

// SweepOnce implements Sweeper.
func (s *sweeper) SweepOnce() int {
	removed, err := s.storage.Sweep(s.now().Add(-s.retention))
	if err != nil {
		s.log.WithError(err).Warn("⚠️ Sweep finished with errors")
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("🧹 Removed expired files")
	}
	return removed
}

func (s *sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}
