package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/garnizeh/jobboard/internal/jobs"
)

type Config struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// Scheduler periodically enqueues one JobType job per notifiable user.
type Scheduler struct {
	profiles    Profiles
	queue       jobs.Enqueuer
	logger      *slog.Logger
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	running     atomic.Bool
	newTicker   func(time.Duration) ticker
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

func NewScheduler(p Profiles, q jobs.Enqueuer, logger *slog.Logger, cfg Config) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Scheduler{
		profiles:    p,
		queue:       q,
		logger:      logger,
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		newTicker:   defaultTicker,
	}
}

// Start runs a scan on every tick until ctx is canceled. Ticks that arrive
// while a scan is still running are dropped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.profiles == nil || s.queue == nil {
		return errors.New("alerts scheduler missing dependencies")
	}

	tick := s.newTicker(s.interval)
	defer tick.Stop()
	ch := tick.C()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			if _, err := s.runOnce(ctx); err != nil {
				// a failed round must not stop later ones
				s.logger.ErrorContext(ctx, "deadline scan round failed", slog.Any("err", err))
			}
		drain:
			for {
				select {
				case <-ch:
					continue
				default:
					break drain
				}
			}
		}
	}
}

// RunOnce enqueues one scan round and reports how many jobs were queued.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) (int, error) {
	if s.running.Swap(true) {
		return 0, nil
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.profiles.ListNotifiable(ctx)
	if err != nil {
		return 0, fmt.Errorf("list notifiable users: %w", err)
	}

	queued := 0
	for _, u := range users {
		if _, err := s.queue.Enqueue(ctx, JobType, Payload{UserID: u.UserID}, 0, s.maxAttempts); err != nil {
			return queued, fmt.Errorf("enqueue scan for %s: %w", u.UserID, err)
		}
		queued++
	}
	s.logger.InfoContext(ctx, "deadline scans queued", slog.Int("users", queued))
	return queued, nil
}

func defaultTicker(d time.Duration) ticker {
	return tickerWrapper{time.NewTicker(d)}
}

type tickerWrapper struct {
	*time.Ticker
}

func (t tickerWrapper) C() <-chan time.Time { return t.Ticker.C }
func (t tickerWrapper) Stop()               { t.Ticker.Stop() }
