package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
	"github.com/custodia-labs/seek/internal/logger"
)

// DefaultEventBuffer is the event channel capacity used when none is configured.
const DefaultEventBuffer = 256

// Ensure SearchSession implements the interface.
var _ driving.Session = (*SearchSession)(nil)

// SearchSession walks one tree and streams match events.
// A session runs once. Its worker is a single goroutine that owns the
// event channel; Cancel only flips an atomic flag and signals the worker.
type SearchSession struct {
	id         string
	cfg        domain.SearchConfig
	enumerator driven.PathEnumerator
	reader     driven.ContentReader
	evaluator  *domain.MatchEvaluator
	log        logger.Scoped

	cancelled  atomic.Bool
	cancelCh   chan struct{}
	cancelOnce sync.Once
	walkCtx    context.Context
	stopWalk   context.CancelFunc

	events chan domain.Event
	done   chan struct{}

	mu      sync.Mutex
	state   domain.SessionState
	summary domain.SessionSummary

	// onFinish runs after the summary is fixed and before Done is closed.
	onFinish func(domain.SessionSummary)
}

// NewSearchSession creates an idle session. cfg is used as given; callers
// validate it and resolve its root first. A non-positive buffer selects
// DefaultEventBuffer.
func NewSearchSession(
	cfg domain.SearchConfig,
	enumerator driven.PathEnumerator,
	reader driven.ContentReader,
	buffer int,
) *SearchSession {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	id := uuid.NewString()
	walkCtx, stopWalk := context.WithCancel(context.Background())
	return &SearchSession{
		id:         id,
		cfg:        cfg,
		enumerator: enumerator,
		reader:     reader,
		evaluator:  domain.NewMatchEvaluator(cfg.Rules),
		log:        logger.Scope("session " + id[:8]),
		walkCtx:    walkCtx,
		stopWalk:   stopWalk,
		cancelCh:   make(chan struct{}),
		events:     make(chan domain.Event, buffer),
		done:       make(chan struct{}),
		state:      domain.SessionIdle,
	}
}

// ID returns the session identifier.
func (s *SearchSession) ID() string {
	return s.id
}

// Config returns the configuration the session runs with.
func (s *SearchSession) Config() domain.SearchConfig {
	return s.cfg
}

// State returns the current lifecycle state.
func (s *SearchSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events returns the event stream.
func (s *SearchSession) Events() <-chan domain.Event {
	return s.events
}

// Done is closed once the session is terminal.
func (s *SearchSession) Done() <-chan struct{} {
	return s.done
}

// Summary returns the final summary once the session is terminal.
func (s *SearchSession) Summary() (domain.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsTerminal() {
		return domain.SessionSummary{}, false
	}
	return s.summary, true
}

// Cancel requests the session to stop. Safe to call at any time.
// The summary is still the last event on the stream; an undelivered event
// may be discarded to make room for it when nobody is reading.
func (s *SearchSession) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.log.Debug("cancel requested")
	}
	s.cancelOnce.Do(func() { close(s.cancelCh) })
	s.stopWalk()
}

// Wait discards undelivered events and returns the summary.
// It must only be called on a started session.
func (s *SearchSession) Wait() domain.SessionSummary {
	for range s.events {
	}
	<-s.done
	summary, _ := s.Summary()
	return summary
}

// Start moves the session from Idle to Running and launches its worker.
// The worker stops when ctx is done, as if Cancel had been called.
func (s *SearchSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("start session in state %s: %w", state, domain.ErrInvalidState)
	}
	s.state = domain.SessionRunning
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.Cancel)
	s.log.Info("started in %s (%s)", s.cfg.RootPath, s.cfg.EffectiveGranularity())

	go s.run(ctx, stop)
	return nil
}

func (s *SearchSession) run(ctx context.Context, stop func() bool) {
	defer close(s.events)
	defer stop()

	var matches, errs, scanned int
	granularity := s.cfg.EffectiveGranularity()

	for path := range s.enumerator.Enumerate(s.walkCtx, s.cfg.RootPath, s.cfg.Extensions) {
		if s.cancelled.Load() {
			break
		}
		scanned++
		s.log.Debug("scan %s", path)

		var err error
		switch granularity {
		case domain.GranularityWholeFile:
			var delivered bool
			delivered, err = s.scanFile(path)
			if delivered {
				matches++
			}
		default:
			var n int
			n, err = s.scanLines(path)
			matches += n
		}

		if err != nil {
			s.log.Debug("read %s: %v", path, err)
			if s.emit(domain.ErrorEvent{Path: path, Message: err.Error()}) {
				errs++
			}
		}
	}

	if ctx.Err() != nil {
		s.Cancel()
	}
	if s.cancelled.Load() {
		switch s.withdraw().(type) {
		case domain.MatchEvent:
			matches--
		case domain.ErrorEvent:
			errs--
		}
	}

	summary := s.finish(matches, errs, scanned)

	select {
	case s.events <- summary:
	case <-s.cancelCh:
		// Cancelled after the summary was fixed while nobody was reading.
		s.withdraw()
		s.events <- summary
	}
}

// withdraw takes back the oldest undelivered event when the stream is full,
// so the summary always has a slot. Only the worker sends, so a send right
// after withdraw never blocks.
func (s *SearchSession) withdraw() domain.Event {
	if len(s.events) < cap(s.events) {
		return nil
	}
	select {
	case ev := <-s.events:
		s.log.Debug("discarded undelivered %T to make room for the summary", ev)
		return ev
	default:
		return nil
	}
}

func (s *SearchSession) scanLines(path string) (int, error) {
	var delivered int
	err := s.reader.ScanLines(path, func(line int, text string) bool {
		if !s.evaluator.Match(text) {
			return true
		}
		ev := domain.MatchEvent{Path: path, Line: line, Excerpt: strings.TrimSpace(text)}
		if !s.emit(ev) {
			return false
		}
		delivered++
		return true
	})
	return delivered, err
}

func (s *SearchSession) scanFile(path string) (bool, error) {
	content, err := s.reader.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !s.evaluator.Match(content) {
		return false, nil
	}
	return s.emit(domain.MatchEvent{Path: path, Excerpt: s.evaluator.Excerpt(content)}), nil
}

// emit delivers a non-terminal event unless the session is cancelled first.
func (s *SearchSession) emit(ev domain.Event) bool {
	if s.cancelled.Load() {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-s.walkCtx.Done():
		return false
	}
}

// finish fixes the summary and the terminal state, runs onFinish and closes Done.
func (s *SearchSession) finish(matches, errs, scanned int) domain.SessionSummary {
	s.mu.Lock()
	completed := !s.cancelled.Load()
	s.summary = domain.SessionSummary{
		SessionID:    s.id,
		MatchCount:   matches,
		ErrorCount:   errs,
		FilesScanned: scanned,
		Completed:    completed,
	}
	if completed {
		s.state = domain.SessionCompleted
	} else {
		s.state = domain.SessionCancelled
	}
	summary := s.summary
	s.mu.Unlock()

	s.stopWalk()
	s.log.Info("%s: %d matches, %d errors, %d files", s.State(), matches, errs, scanned)

	if s.onFinish != nil {
		s.onFinish(summary)
	}
	close(s.done)
	return summary
}
