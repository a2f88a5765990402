package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/seek/internal/core/domain"
)

func lineConfig(rules ...domain.PhraseRule) domain.SearchConfig {
	return domain.SearchConfig{
		RootPath:    "/root",
		Extensions:  domain.ExtensionSet{".txt"},
		Rules:       rules,
		Granularity: domain.GranularityLine,
	}
}

func wholeConfig(rules ...domain.PhraseRule) domain.SearchConfig {
	cfg := lineConfig(rules...)
	cfg.Granularity = domain.GranularityWholeFile
	return cfg
}

func runSession(t *testing.T, cfg domain.SearchConfig, paths []string, reader *mockReader) (*SearchSession, []domain.Event) {
	t.Helper()
	session := NewSearchSession(cfg, &mockEnumerator{paths: paths}, reader, 0)
	require.NoError(t, session.Start(context.Background()))
	events := collectEvents(session.Events())
	<-session.Done()
	return session, events
}

// requireSingleTrailingSummary checks the stream ends with exactly one summary.
func requireSingleTrailingSummary(t *testing.T, events []domain.Event) domain.SessionSummary {
	t.Helper()
	require.NotEmpty(t, events)
	count := 0
	for _, ev := range events {
		if _, ok := ev.(domain.SessionSummary); ok {
			count++
		}
	}
	require.Equal(t, 1, count, "expected exactly one summary")
	summary, ok := events[len(events)-1].(domain.SessionSummary)
	require.True(t, ok, "summary must be the last event")
	return summary
}

func TestSearchSession_LineMatches(t *testing.T) {
	reader := newMockReader(map[string]string{
		"/root/a.txt": "  foo one\nbar\nfoo two  \r\n",
		"/root/b.txt": "nothing here",
	})

	session, events := runSession(t, lineConfig(domain.Include("foo")), []string{"/root/a.txt", "/root/b.txt"}, reader)

	assert.Equal(t, []domain.MatchEvent{
		{Path: "/root/a.txt", Line: 1, Excerpt: "foo one"},
		{Path: "/root/a.txt", Line: 3, Excerpt: "foo two"},
	}, matchesOf(events))

	summary := requireSingleTrailingSummary(t, events)
	assert.True(t, summary.Completed)
	assert.Equal(t, 2, summary.MatchCount)
	assert.Equal(t, 2, summary.FilesScanned)
	assert.Equal(t, session.ID(), summary.SessionID)
	assert.Equal(t, domain.SessionCompleted, session.State())

	stored, ok := session.Summary()
	assert.True(t, ok)
	assert.Equal(t, summary, stored)
}

func TestSearchSession_WholeFileMatches(t *testing.T) {
	reader := newMockReader(map[string]string{
		"/root/a.txt": "intro\nfoo and bar\nfoo again\n",
		"/root/b.txt": "foo only",
		"/root/c.txt": "bar\nfoo",
	})

	_, events := runSession(t, wholeConfig(domain.Include("foo"), domain.Include("bar")),
		[]string{"/root/a.txt", "/root/b.txt", "/root/c.txt"}, reader)

	matches := matchesOf(events)
	assert.Equal(t, []domain.MatchEvent{
		{Path: "/root/a.txt", Excerpt: "foo and bar"},
		{Path: "/root/c.txt", Excerpt: "foo"},
	}, matches)
	for _, m := range matches {
		assert.False(t, m.HasLine())
	}

	summary := requireSingleTrailingSummary(t, events)
	assert.Equal(t, 2, summary.MatchCount)
	assert.True(t, summary.Completed)
}

func TestSearchSession_NoRulesMatchesEverything(t *testing.T) {
	files := map[string]string{
		"/root/a.txt": "one\n\nthree\n",
		"/root/b.txt": "",
	}
	paths := []string{"/root/a.txt", "/root/b.txt"}

	t.Run("line", func(t *testing.T) {
		_, events := runSession(t, lineConfig(), paths, newMockReader(files))
		assert.Len(t, matchesOf(events), 3)
	})

	t.Run("whole file", func(t *testing.T) {
		_, events := runSession(t, wholeConfig(), paths, newMockReader(files))
		matches := matchesOf(events)
		require.Len(t, matches, 2)
		assert.Equal(t, "one", matches[0].Excerpt)
		assert.Equal(t, "", matches[1].Excerpt)
	})
}

func TestSearchSession_ExcludeInEveryLine(t *testing.T) {
	reader := newMockReader(map[string]string{
		"/root/a.txt": "foo draft\nbar draft\nfoo bar draft\n",
	})

	for _, cfg := range []domain.SearchConfig{
		lineConfig(domain.Include("foo"), domain.Exclude("draft")),
		wholeConfig(domain.Include("foo"), domain.Exclude("draft")),
	} {
		_, events := runSession(t, cfg, []string{"/root/a.txt"}, reader)
		assert.Empty(t, matchesOf(events))
		assert.Equal(t, 0, requireSingleTrailingSummary(t, events).MatchCount)
	}
}

func TestSearchSession_ReadErrorContinues(t *testing.T) {
	reader := newMockReader(map[string]string{
		"/root/b.txt": "foo",
	})
	reader.errs["/root/a.txt"] = errors.New("open /root/a.txt: permission denied")

	_, events := runSession(t, lineConfig(domain.Include("foo")), []string{"/root/a.txt", "/root/b.txt"}, reader)

	require.Len(t, events, 3)
	assert.Equal(t, domain.ErrorEvent{Path: "/root/a.txt", Message: "open /root/a.txt: permission denied"}, events[0])
	assert.Equal(t, domain.MatchEvent{Path: "/root/b.txt", Line: 1, Excerpt: "foo"}, events[1])

	summary := requireSingleTrailingSummary(t, events)
	assert.True(t, summary.Completed)
	assert.Equal(t, 1, summary.MatchCount)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.Len(t, errorsOf(events), 1)
}

func TestSearchSession_EmptyTree(t *testing.T) {
	_, events := runSession(t, lineConfig(), nil, newMockReader(nil))

	require.Len(t, events, 1)
	summary := requireSingleTrailingSummary(t, events)
	assert.True(t, summary.Completed)
	assert.Zero(t, summary.MatchCount)
}

func TestSearchSession_StartTwice(t *testing.T) {
	session := NewSearchSession(lineConfig(), &mockEnumerator{}, newMockReader(nil), 0)
	require.NoError(t, session.Start(context.Background()))

	err := session.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	session.Wait()
	assert.ErrorIs(t, session.Start(context.Background()), domain.ErrInvalidState)
}

func TestSearchSession_SummaryBeforeStart(t *testing.T) {
	session := NewSearchSession(lineConfig(), &mockEnumerator{}, newMockReader(nil), 0)

	_, ok := session.Summary()
	assert.False(t, ok)
	assert.Equal(t, domain.SessionIdle, session.State())
}

func TestSearchSession_CancelBeforeStart(t *testing.T) {
	reader := newMockReader(map[string]string{"/root/a.txt": "foo"})
	session := NewSearchSession(lineConfig(), &mockEnumerator{paths: []string{"/root/a.txt"}}, reader, 0)

	session.Cancel()
	require.NoError(t, session.Start(context.Background()))
	events := collectEvents(session.Events())

	summary := requireSingleTrailingSummary(t, events)
	assert.False(t, summary.Completed)
	assert.Empty(t, reader.openedPaths())
	assert.Equal(t, domain.SessionCancelled, session.State())
}

func TestSearchSession_CancelStopsOpeningFiles(t *testing.T) {
	paths := []string{"/root/a.txt", "/root/b.txt", "/root/c.txt"}
	reader := newMockReader(map[string]string{
		"/root/a.txt": "foo a",
		"/root/b.txt": "foo b",
		"/root/c.txt": "foo c",
	})
	gate := make(chan struct{})
	reader.gates["/root/b.txt"] = gate
	reader.reading = make(chan string, len(paths))

	session := NewSearchSession(lineConfig(domain.Include("foo")), &mockEnumerator{paths: paths}, reader, 0)
	require.NoError(t, session.Start(context.Background()))

	assert.Equal(t, "/root/a.txt", <-reader.reading)
	assert.Equal(t, "/root/b.txt", <-reader.reading)

	session.Cancel()
	session.Cancel()
	close(gate)

	events := collectEvents(session.Events())
	summary := requireSingleTrailingSummary(t, events)

	assert.False(t, summary.Completed)
	assert.Equal(t, []domain.MatchEvent{{Path: "/root/a.txt", Line: 1, Excerpt: "foo a"}}, matchesOf(events))
	assert.Equal(t, 1, summary.MatchCount)
	assert.Equal(t, []string{"/root/a.txt", "/root/b.txt"}, reader.openedPaths())
	assert.Equal(t, domain.SessionCancelled, session.State())
}

func TestSearchSession_CancelAfterCompletionIsNoop(t *testing.T) {
	reader := newMockReader(map[string]string{"/root/a.txt": "foo"})
	session, events := runSession(t, lineConfig(), []string{"/root/a.txt"}, reader)

	session.Cancel()

	summary, ok := session.Summary()
	require.True(t, ok)
	assert.True(t, summary.Completed)
	assert.Equal(t, domain.SessionCompleted, session.State())
	assert.Equal(t, summary, requireSingleTrailingSummary(t, events))
}

func TestSearchSession_SlowConsumerCannotBlockCancel(t *testing.T) {
	var content string
	for i := 0; i < 100; i++ {
		content += fmt.Sprintf("foo %d\n", i)
	}
	reader := newMockReader(map[string]string{"/root/a.txt": content, "/root/b.txt": content})
	session := NewSearchSession(lineConfig(domain.Include("foo")),
		&mockEnumerator{paths: []string{"/root/a.txt", "/root/b.txt"}}, reader, 1)
	require.NoError(t, session.Start(context.Background()))

	// Nobody reads; the worker fills the buffer and blocks on the next send.
	time.Sleep(20 * time.Millisecond)
	session.Cancel()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not honour Cancel while the consumer was stalled")
	}

	summary := session.Wait()
	assert.False(t, summary.Completed)
	assert.LessOrEqual(t, summary.MatchCount, 2)
	assert.Equal(t, []string{"/root/a.txt"}, reader.openedPaths())
}

func TestSearchSession_ContextCancels(t *testing.T) {
	gate := make(chan struct{})
	reader := newMockReader(map[string]string{"/root/a.txt": "foo", "/root/b.txt": "foo"})
	reader.gates["/root/a.txt"] = gate
	reader.reading = make(chan string, 2)

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSearchSession(lineConfig(),
		&mockEnumerator{paths: []string{"/root/a.txt", "/root/b.txt"}}, reader, 0)
	require.NoError(t, session.Start(ctx))

	<-reader.reading
	cancel()
	require.Eventually(t, session.cancelled.Load, time.Second, time.Millisecond)
	close(gate)

	summary := requireSingleTrailingSummary(t, collectEvents(session.Events()))
	assert.False(t, summary.Completed)
	assert.Equal(t, 0, summary.MatchCount)
	<-session.Done()
	final, ok := session.Summary()
	require.True(t, ok)
	assert.Equal(t, summary, final)
	assert.Equal(t, []string{"/root/a.txt"}, reader.openedPaths())
}

func TestSearchSession_CancelledContextStillDeliversSummary(t *testing.T) {
	files := map[string]string{"/root/a.txt": "foo
foo
", "/root/b.txt": "foo"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 200; i++ {
		session := NewSearchSession(lineConfig(domain.Include("foo")),
			&mockEnumerator{paths: []string{"/root/a.txt", "/root/b.txt"}}, newMockReader(files), 0)
		require.NoError(t, session.Start(ctx))

		events := collectEvents(session.Events())
		summary := requireSingleTrailingSummary(t, events)
		assert.False(t, summary.Completed)
		assert.Equal(t, len(matchesOf(events)), summary.MatchCount)
	}
}

func TestSearchSession_AbandonedStreamStillCloses(t *testing.T) {
	var content string
	for i := 0; i < 50; i++ {
		content += fmt.Sprintf("foo %d\n", i)
	}
	reader := newMockReader(map[string]string{"/root/a.txt": content})
	session := NewSearchSession(lineConfig(domain.Include("foo")),
		&mockEnumerator{paths: []string{"/root/a.txt"}}, reader, 1)
	require.NoError(t, session.Start(context.Background()))

	// The buffer fills and the worker blocks; nobody reads before Cancel.
	time.Sleep(20 * time.Millisecond)
	session.Cancel()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not honour Cancel with a full buffer")
	}

	next := func() (domain.Event, bool) {
		select {
		case ev, ok := <-session.Events():
			return ev, ok
		case <-time.After(2 * time.Second):
			t.Fatal("stream was not closed after Cancel")
			return nil, false
		}
	}

	ev, ok := next()
	require.True(t, ok)
	summary, isSummary := ev.(domain.SessionSummary)
	require.True(t, isSummary, "the summary must replace the undelivered match, got %T", ev)
	assert.False(t, summary.Completed)
	assert.Equal(t, 0, summary.MatchCount)

	_, ok = next()
	assert.False(t, ok, "the stream must be closed after the summary")
}

func TestSearchSession_Idempotent(t *testing.T) {
	files := map[string]string{
		"/root/a.txt": "foo\nbar foo\n",
		"/root/b.txt": "foo",
	}
	paths := []string{"/root/a.txt", "/root/b.txt", "/root/missing.txt"}
	cfg := lineConfig(domain.Include("foo"))

	first, firstEvents := runSession(t, cfg, paths, newMockReader(files))
	second, secondEvents := runSession(t, cfg, paths, newMockReader(files))

	assert.NotEqual(t, first.ID(), second.ID())
	require.Equal(t, len(firstEvents), len(secondEvents))
	for i := range firstEvents {
		if s, ok := firstEvents[i].(domain.SessionSummary); ok {
			other := secondEvents[i].(domain.SessionSummary)
			s.SessionID, other.SessionID = "", ""
			assert.Equal(t, s, other)
			continue
		}
		assert.Equal(t, firstEvents[i], secondEvents[i])
	}
}

func TestSearchSession_OnFinish(t *testing.T) {
	reader := newMockReader(map[string]string{"/root/a.txt": "foo"})
	session := NewSearchSession(lineConfig(), &mockEnumerator{paths: []string{"/root/a.txt"}}, reader, 0)

	var got domain.SessionSummary
	session.onFinish = func(s domain.SessionSummary) { got = s }

	require.NoError(t, session.Start(context.Background()))
	summary := session.Wait()

	assert.Equal(t, summary, got)
	assert.Equal(t, 1, got.MatchCount)
}

func TestSearchSession_ConfigAndEventsAccessors(t *testing.T) {
	cfg := lineConfig(domain.Include("x"))
	session := NewSearchSession(cfg, &mockEnumerator{}, newMockReader(nil), 0)

	assert.Equal(t, cfg, session.Config())
	assert.NotNil(t, session.Events())
	assert.Equal(t, DefaultEventBuffer, cap(session.events))
}
