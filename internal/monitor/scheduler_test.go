package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedin/go-focus-monitor/internal/classifier"
	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/core/profile"
)

// fakeSource hands out captures from a queue.
type fakeSource struct {
	captures []model.Capture
	next     int
	err      error
}

func (f *fakeSource) CaptureScreen(ctx context.Context) (model.Capture, error) {
	if f.err != nil {
		return model.Capture{}, f.err
	}
	if f.next >= len(f.captures) {
		return model.Capture{}, fmt.Errorf("fake source exhausted")
	}
	c := f.captures[f.next]
	f.next++
	return c, nil
}

// fakeClassifier returns a fixed label or error for every request.
type fakeClassifier struct {
	label model.VerdictLabel
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, c model.Capture, p model.ProfileSnapshot) (model.Verdict, error) {
	f.calls++
	if f.err != nil {
		return model.Verdict{}, f.err
	}
	return model.Verdict{
		Sequence:   c.Sequence,
		Label:      f.label,
		ReceivedAt: time.Now(),
	}, nil
}

type recordingSink struct {
	events []model.NotificationEvent
}

func (r *recordingSink) Notify(e model.NotificationEvent) {
	r.events = append(r.events, e)
}

func captures(n int) []model.Capture {
	out := make([]model.Capture, n)
	for i := range out {
		out[i] = model.Capture{Sequence: int64(i + 1), Timestamp: time.Now()}
	}
	return out
}

func newTestScheduler(t *testing.T, source *fakeSource, client classifier.Client, sink Sink) *Scheduler {
	t.Helper()

	cfg := &Config{
		DataDir:        t.TempDir(),
		Interval:       time.Second,
		BufferCapacity: 3,
	}
	cfg.Escalation.Thresholds = []int{2, 2, 2}

	registry := profile.NewRegistry()
	s, err := NewScheduler(cfg, source, client, registry, nil, nil, sink)
	require.NoError(t, err)
	return s
}

// runInflight drives the tick and synchronously consumes the
// classification result, standing in for the select loop.
func runInflight(t *testing.T, s *Scheduler) {
	t.Helper()
	if !s.inflight {
		return
	}
	select {
	case res := <-s.results:
		s.handleResult(res)
	case <-time.After(2 * time.Second):
		t.Fatal("classification result never arrived")
	}
}

func TestTicksEscalateOnDistraction(t *testing.T) {
	sink := &recordingSink{}
	source := &fakeSource{captures: captures(6)}
	client := &fakeClassifier{label: model.VerdictDistracted}
	s := newTestScheduler(t, source, client, sink)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		s.tick(ctx)
		runInflight(t, s)
	}

	assert.Equal(t, 1, s.Engine().State().Level)
	require.Len(t, sink.events, 1)
	assert.Equal(t, 1, sink.events[0].Level)
	assert.Equal(t, 2, client.calls)
}

func TestCaptureFailureSkipsTick(t *testing.T) {
	sink := &recordingSink{}
	source := &fakeSource{err: errors.New("no display")}
	client := &fakeClassifier{label: model.VerdictDistracted}
	s := newTestScheduler(t, source, client, sink)

	for i := 0; i < 5; i++ {
		s.tick(context.Background())
	}

	assert.Equal(t, 0, s.Buffer().Len())
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, 0, s.Engine().State().Level)
}

func TestClassifierUnavailableLeavesStateUnchanged(t *testing.T) {
	sink := &recordingSink{}
	source := &fakeSource{captures: captures(5)}
	client := &fakeClassifier{err: classifier.ErrUnavailable}
	s := newTestScheduler(t, source, client, sink)

	for i := 0; i < 5; i++ {
		s.tick(context.Background())
		runInflight(t, s)
	}

	assert.Equal(t, 0, s.Engine().State().Level)
	assert.Empty(t, sink.events)
	assert.Equal(t, 5, client.calls, "failures are retried with fresh captures")
	assert.Equal(t, 3, s.Buffer().Len(), "buffer keeps advancing despite failures")
}

func TestSlowRequestDoesNotBlockTicks(t *testing.T) {
	source := &fakeSource{captures: captures(4)}
	block := make(chan struct{})
	client := &blockingClassifier{release: block}
	s := newTestScheduler(t, source, client, nil)

	ctx := context.Background()
	s.tick(ctx) // starts the in-flight request
	s.tick(ctx) // must not block or start a second request
	s.tick(ctx)

	assert.Equal(t, 3, s.Buffer().Len(), "ticks proceed while a request is outstanding")
	assert.Equal(t, 1, client.calls)

	close(block)
	runInflight(t, s)
	assert.False(t, s.inflight)
}

type blockingClassifier struct {
	release chan struct{}
	calls   int
}

func (b *blockingClassifier) Classify(ctx context.Context, c model.Capture, p model.ProfileSnapshot) (model.Verdict, error) {
	b.calls++
	select {
	case <-b.release:
	case <-ctx.Done():
		return model.Verdict{}, fmt.Errorf("%w: %v", classifier.ErrUnavailable, ctx.Err())
	}
	return model.Verdict{Sequence: c.Sequence, Label: model.VerdictProductive, ReceivedAt: time.Now()}, nil
}

func TestStaleResultDiscarded(t *testing.T) {
	sink := &recordingSink{}
	source := &fakeSource{captures: captures(6)}
	client := &fakeClassifier{label: model.VerdictDistracted}
	s := newTestScheduler(t, source, client, sink)

	ctx := context.Background()
	s.tick(ctx)
	runInflight(t, s)
	require.Equal(t, int64(1), s.Engine().State().LastSequence)

	// A late result for an already-processed sequence must not move the
	// state machine.
	before := s.Engine().State()
	s.handleResult(classifyResult{
		sequence: 1,
		verdict:  model.Verdict{Sequence: 1, Label: model.VerdictDistracted, ReceivedAt: time.Now()},
	})
	assert.Equal(t, before, s.Engine().State())
}

func TestBlocklistFastPathSkipsBackend(t *testing.T) {
	sink := &recordingSink{}
	source := &fakeSource{captures: []model.Capture{
		{Sequence: 1, Process: "steam.exe", WindowTitle: "Steam"},
		{Sequence: 2, Process: "steam.exe", WindowTitle: "Steam"},
	}}
	client := &fakeClassifier{label: model.VerdictProductive}
	s := newTestScheduler(t, source, client, sink)

	ctx := context.Background()
	s.tick(ctx)
	s.tick(ctx)

	assert.Equal(t, 0, client.calls, "blocklisted process must not reach the backend")
	assert.Equal(t, 1, s.Engine().State().Level)
	require.Len(t, sink.events, 1)
}

func TestAllowlistFastPathProductive(t *testing.T) {
	source := &fakeSource{captures: []model.Capture{
		{Sequence: 1, Process: "code", WindowTitle: "editor"},
	}}
	client := &fakeClassifier{label: model.VerdictDistracted}
	s := newTestScheduler(t, source, client, nil)

	s.tick(context.Background())

	assert.Equal(t, 0, client.calls)
	assert.Equal(t, 0, s.Engine().State().Level)
	assert.Equal(t, int64(1), s.Engine().State().LastSequence)
}

func TestBrowserBypassesProcessLists(t *testing.T) {
	source := &fakeSource{captures: []model.Capture{
		{Sequence: 1, Process: "chrome.exe", WindowTitle: "some page"},
	}}
	client := &fakeClassifier{label: model.VerdictProductive}
	s := newTestScheduler(t, source, client, nil)

	s.tick(context.Background())
	runInflight(t, s)

	assert.Equal(t, 1, client.calls, "browser captures always go to the backend")
}

func TestDistractionCacheFastPath(t *testing.T) {
	cache, err := NewDistractionCache(t.TempDir(), "developer")
	require.NoError(t, err)

	source := &fakeSource{captures: []model.Capture{
		{Sequence: 1, Process: "chrome.exe", WindowTitle: "YouTube - Watch Videos"},
		{Sequence: 2, Process: "chrome.exe", WindowTitle: "YouTube - Watch Videos"},
	}}
	client := &fakeClassifier{label: model.VerdictDistracted}

	cfg := &Config{DataDir: t.TempDir(), Interval: time.Second, BufferCapacity: 3}
	s, err := NewScheduler(cfg, source, client, profile.NewRegistry(), nil, cache, nil)
	require.NoError(t, err)

	ctx := context.Background()
	s.tick(ctx)
	runInflight(t, s)
	require.Equal(t, 1, client.calls)
	require.Equal(t, 1, cache.Len(), "backend distraction verdict seeds the cache")

	s.tick(ctx)
	assert.Equal(t, 1, client.calls, "cached pair must skip the backend")
	assert.Equal(t, int64(2), s.Engine().State().LastSequence)
}

func TestRunDropsLeftoverResult(t *testing.T) {
	source := &fakeSource{captures: captures(10)}
	client := &fakeClassifier{label: model.VerdictProductive}

	cfg := &Config{DataDir: t.TempDir(), Interval: time.Second, BufferCapacity: 3}
	recorder, err := NewRecorder(t.TempDir())
	require.NoError(t, err)
	s, err := NewScheduler(cfg, source, client, profile.NewRegistry(), recorder, nil, nil)
	require.NoError(t, err)

	// A request abandoned by an earlier run can complete after the drain
	// timeout and leave its result queued.
	s.results <- classifyResult{
		sequence: 42,
		verdict:  model.Verdict{Sequence: 42, Label: model.VerdictDistracted, ReceivedAt: time.Now()},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	assert.Equal(t, 0, recorder.Summary().VerdictCount,
		"a previous session's verdict must not be recorded")
}

func TestRunStopsOnCancel(t *testing.T) {
	source := &fakeSource{captures: captures(100)}
	client := &fakeClassifier{label: model.VerdictProductive}
	s := newTestScheduler(t, source, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Equal(t, 0, s.Engine().State().Level, "stopping resets to the initial state")
}
