package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/capture"
	"github.com/lockedin/go-focus-monitor/internal/classifier"
	"github.com/lockedin/go-focus-monitor/internal/core/buffer"
	"github.com/lockedin/go-focus-monitor/internal/core/escalation"
	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/core/profile"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// Scheduler drives the monitoring cadence: every interval it acquires a
// capture, pushes it into the activity buffer, and requests
// classification of the newest capture. At most one classification is
// outstanding; a tick never blocks on a slow backend.
type Scheduler struct {
	cfg      *Config
	source   capture.Source
	client   classifier.Client
	registry *profile.Registry
	engine   *escalation.Engine
	buffer   *buffer.ActivityBuffer
	recorder *Recorder
	cache    *DistractionCache
	sink     Sink

	// results carries the outcome of the in-flight classification back
	// into the scheduler goroutine; capacity 1 so an abandoned request
	// can always complete its send.
	results        chan classifyResult
	inflight       bool
	cancelInflight context.CancelFunc
}

type classifyResult struct {
	sequence int64
	verdict  model.Verdict
	err      error
}

// NewScheduler wires up a monitoring session.
func NewScheduler(cfg *Config, source capture.Source, client classifier.Client,
	registry *profile.Registry, recorder *Recorder, cache *DistractionCache, sink Sink) (*Scheduler, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if sink == nil {
		sink = discardSink{}
	}

	s := &Scheduler{
		cfg:      cfg,
		source:   source,
		client:   client,
		registry: registry,
		recorder: recorder,
		cache:    cache,
		sink:     sink,
		results:  make(chan classifyResult, 1),
	}

	engine, err := escalation.NewEngine(cfg.Escalation, func(e model.NotificationEvent) {
		if s.recorder != nil {
			s.recorder.RecordNotification(e)
		}
		s.sink.Notify(e)
	})
	if err != nil {
		return nil, err
	}
	s.engine = engine

	s.buffer = buffer.New(cfg.BufferCapacity, func(n model.EvictionNotice) {
		if s.recorder != nil {
			s.recorder.HandleEviction(n)
		}
	})

	return s, nil
}

// Engine exposes the escalation engine, e.g. for state persistence.
func (s *Scheduler) Engine() *escalation.Engine {
	return s.engine
}

// Buffer exposes the activity buffer for read-only snapshots.
func (s *Scheduler) Buffer() *buffer.ActivityBuffer {
	return s.buffer
}

// Run executes the monitoring loop until the context is cancelled.
// Stopping abandons any outstanding classification; its late verdict is
// discarded by the stale-sequence check when monitoring restarts.
func (s *Scheduler) Run(ctx context.Context) error {
	// A request abandoned by a previous run may have completed after the
	// drain timeout; its queued result must not leak into this session.
	select {
	case res := <-s.results:
		util.LogDebugf("Dropping leftover classification result seq=%d from a previous session", res.sequence)
	default:
	}

	util.LogInfof("Monitoring started: profile=%s interval=%v", s.registry.ActiveName(), s.cfg.Interval)
	if s.recorder != nil {
		s.recorder.Start(s.registry.ActiveName())
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	decayTicker := time.NewTicker(decayCheckInterval(s.cfg.Escalation.DecayTimeout))
	defer decayTicker.Stop()

	defer s.abandonInflight()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Monitoring stopped")
			s.engine.Reset()
			return nil

		case <-ticker.C:
			s.tick(ctx)

		case <-decayTicker.C:
			// Idle users are not punished for a stale streak.
			s.engine.CheckDecay()

		case res := <-s.results:
			s.handleResult(res)
		}
	}
}

// tick performs one scheduling round. Capture failures skip the tick
// without touching any state.
func (s *Scheduler) tick(ctx context.Context) {
	shot, err := s.source.CaptureScreen(ctx)
	if err != nil {
		util.LogWarnf("Capture failed, skipping tick: %v", err)
		return
	}

	s.buffer.Push(shot)

	snapshot := s.registry.ActiveSnapshot()
	if verdict, ok := s.fastVerdict(shot, snapshot); ok {
		s.deliver(verdict, false)
		return
	}

	if s.inflight {
		// The previous request is still outstanding. The buffer has
		// advanced; this capture simply goes unclassified.
		util.LogDebugf("Classification still in flight, skipping request for seq=%d", shot.Sequence)
		return
	}

	s.startClassification(ctx, shot, snapshot)
}

// fastVerdict resolves a capture without the external backend when the
// profile's process lists or the distraction cache already decide it.
// Browsers always go to the backend; their window content matters, not
// the binary.
func (s *Scheduler) fastVerdict(shot model.Capture, snapshot model.ProfileSnapshot) (model.Verdict, bool) {
	if shot.Process != "" && !profile.IsBrowser(shot.Process) {
		if profile.MatchesProcess(snapshot.Blocklist, shot.Process) {
			util.LogDebugf("Fast path: process %s is blocklisted", shot.Process)
			return synthVerdict(shot.Sequence, model.VerdictDistracted, "process on blocklist"), true
		}
		if profile.MatchesProcess(snapshot.Allowlist, shot.Process) {
			util.LogDebugf("Fast path: process %s is allowlisted", shot.Process)
			return synthVerdict(shot.Sequence, model.VerdictProductive, "process on allowlist"), true
		}
	}

	if s.cache != nil && s.cache.IsDistracting(shot.Process, shot.WindowTitle) {
		util.LogDebugf("Fast path: %s | %s cached as distracting", shot.Process, shot.WindowTitle)
		return synthVerdict(shot.Sequence, model.VerdictDistracted, "previously judged distracting"), true
	}

	return model.Verdict{}, false
}

func synthVerdict(seq int64, label model.VerdictLabel, rationale string) model.Verdict {
	return model.Verdict{
		Sequence:   seq,
		Label:      label,
		Confidence: 1,
		Rationale:  rationale,
		ReceivedAt: time.Now(),
	}
}

// startClassification launches the external call without blocking the
// loop. Requests are keyed by sequence number; cancellation on session
// stop is explicit.
func (s *Scheduler) startClassification(ctx context.Context, shot model.Capture, snapshot model.ProfileSnapshot) {
	reqCtx, cancel := context.WithCancel(ctx)
	s.inflight = true
	s.cancelInflight = cancel

	go func() {
		verdict, err := s.client.Classify(reqCtx, shot, snapshot)
		s.results <- classifyResult{sequence: shot.Sequence, verdict: verdict, err: err}
	}()
}

// handleResult finishes the in-flight request. Classification failures
// produce no verdict and leave escalation state untouched; the next
// tick retries with a fresh capture.
func (s *Scheduler) handleResult(res classifyResult) {
	s.inflight = false
	if s.cancelInflight != nil {
		s.cancelInflight()
		s.cancelInflight = nil
	}

	if res.err != nil {
		switch {
		case errors.Is(res.err, classifier.ErrMalformed):
			util.LogErrorf("Classifier returned malformed response for seq=%d: %v", res.sequence, res.err)
		case errors.Is(res.err, classifier.ErrUnavailable):
			util.LogWarnf("Classifier unavailable for seq=%d: %v", res.sequence, res.err)
		default:
			util.LogWarnf("Classification failed for seq=%d: %v", res.sequence, res.err)
		}
		return
	}

	s.deliver(res.verdict, true)
}

// deliver routes one verdict through the escalation engine and the
// session recorder. Stale verdicts are discarded here and logged; they
// are expected under concurrency, not an error.
func (s *Scheduler) deliver(verdict model.Verdict, fromBackend bool) {
	if last := s.engine.State().LastSequence; verdict.Sequence <= last {
		util.LogDebugf("Discarding stale verdict seq=%d (last processed seq=%d)", verdict.Sequence, last)
		return
	}

	s.engine.Process(verdict)
	if s.recorder != nil {
		s.recorder.RecordVerdict(verdict)
	}

	// Backend distraction verdicts seed the cache so the same page skips
	// the model next time.
	if fromBackend && verdict.Distracted() && s.cache != nil {
		if shot, ok := s.buffer.Find(verdict.Sequence); ok && (shot.Process != "" || shot.WindowTitle != "") {
			s.cache.AddDistracting(shot.Process, shot.WindowTitle)
		}
	}
}

// abandonInflight cancels the outstanding request and drains its result
// so the worker goroutine can exit.
func (s *Scheduler) abandonInflight() {
	if !s.inflight {
		return
	}
	if s.cancelInflight != nil {
		s.cancelInflight()
		s.cancelInflight = nil
	}
	select {
	case <-s.results:
	case <-time.After(time.Second):
	}
	s.inflight = false
}

// decayCheckInterval derives the decay poll cadence from the timeout.
func decayCheckInterval(timeout time.Duration) time.Duration {
	interval := timeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
