package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
	"github.com/custodia-labs/seek/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService re-runs a search when files below its root change.
// At most one session is active: a change cancels the running session
// and waits for it to end before the next one starts.
type WatchService struct {
	search      driving.SearchService
	watcher     driven.TreeWatcher
	minInterval time.Duration
}

// NewWatchService creates a watch service. Re-runs start at most once per minInterval.
// A nil watcher makes Watch return domain.ErrWatchUnavailable.
func NewWatchService(search driving.SearchService, watcher driven.TreeWatcher, minInterval time.Duration) *WatchService {
	return &WatchService{
		search:      search,
		watcher:     watcher,
		minInterval: minInterval,
	}
}

// Watch runs cfg and re-runs it on every change until ctx is done.
func (s *WatchService) Watch(
	ctx context.Context, cfg domain.SearchConfig, onEvent func(run int, ev domain.Event),
) error {
	if s.watcher == nil {
		return domain.ErrWatchUnavailable
	}
	logger.Section("Watch")

	session, err := s.search.Start(ctx, cfg)
	if err != nil {
		return err
	}
	// Re-runs use the resolved configuration so the root is never re-resolved.
	cfg = session.Config()

	changes, err := s.watcher.Watch(ctx, cfg.RootPath)
	if err != nil {
		session.Cancel()
		session.Wait()
		return fmt.Errorf("watch %s: %w", cfg.RootPath, err)
	}

	limit := rate.Inf
	if s.minInterval > 0 {
		limit = rate.Every(s.minInterval)
	}
	limiter := rate.NewLimiter(limit, 1)
	limiter.Allow()

	run := 1
	r := &watchRun{run: run, session: session, events: session.Events()}
	for {
		select {
		case <-ctx.Done():
			session.Cancel()
			r.finish(onEvent)
			return nil

		case ev, ok := <-r.events:
			if !ok {
				r.events = nil
				r.finish(onEvent)
				continue
			}
			r.deliver(ev, onEvent)

		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			logger.Debug("change: %s", path)
			if err := limiter.Wait(ctx); err != nil {
				continue
			}
			drain(changes)

			session.Cancel()
			r.finish(onEvent)

			session, err = s.search.Start(ctx, cfg)
			if err != nil {
				return fmt.Errorf("re-run search: %w", err)
			}
			run++
			logger.Info("re-run %d after change to %s", run, path)
			r = &watchRun{run: run, session: session, events: session.Events()}
		}
	}
}

// watchRun tracks delivery of one session's events.
type watchRun struct {
	run        int
	session    driving.Session
	events     <-chan domain.Event
	summarised bool
}

func (r *watchRun) deliver(ev domain.Event, onEvent func(int, domain.Event)) {
	if _, ok := ev.(domain.SessionSummary); ok {
		if r.summarised {
			return
		}
		r.summarised = true
	}
	onEvent(r.run, ev)
}

// finish delivers what is left of the run, including a summary the
// session could not send because its context ended.
func (r *watchRun) finish(onEvent func(int, domain.Event)) {
	if r.events != nil {
		for ev := range r.events {
			r.deliver(ev, onEvent)
		}
		r.events = nil
	}
	<-r.session.Done()
	if summary, ok := r.session.Summary(); ok {
		r.deliver(summary, onEvent)
	}
}

// drain discards changes that are already queued.
func drain(changes <-chan string) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
