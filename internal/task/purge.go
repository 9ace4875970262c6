package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskflow/taskflow-api/internal/store"
)

// UnconfirmedPurger periodically deletes accounts that never confirmed
// their email. The age threshold mirrors the verification token TTL
// with headroom: once an account's token cannot possibly be alive, the
// account is unreachable and only blocks its username and email.
type UnconfirmedPurger struct {
	users    store.UserStore
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger

	timeFunc func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUnconfirmedPurger creates a purger that runs every interval and
// deletes unconfirmed accounts older than maxAge.
func NewUnconfirmedPurger(
	users store.UserStore,
	interval, maxAge time.Duration,
	logger *slog.Logger,
) *UnconfirmedPurger {
	ctx, cancel := context.WithCancel(context.Background())

	return &UnconfirmedPurger{
		users:    users,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		timeFunc: time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the purge loop.
func (p *UnconfirmedPurger) Start() {
	p.wg.Add(1)
	go p.loop()
	p.logger.Info("unconfirmed account purger started",
		slog.Duration("interval", p.interval),
		slog.Duration("max_age", p.maxAge))
}

// Stop cancels the loop and waits for it to exit.
func (p *UnconfirmedPurger) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("unconfirmed account purger stopped")
}

func (p *UnconfirmedPurger) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.PurgeOnce(p.ctx); err != nil {
				p.logger.Error("unconfirmed account purge failed", slog.Any("error", err))
			}
		}
	}
}

// PurgeOnce deletes unconfirmed accounts older than the threshold.
func (p *UnconfirmedPurger) PurgeOnce(ctx context.Context) error {
	cutoff := p.timeFunc().Add(-p.maxAge)

	deleted, err := p.users.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete unconfirmed accounts: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("purged unconfirmed accounts", slog.Int64("count", deleted))
	}
	return nil
}
