package escalation

import (
	"fmt"
	"sync"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// State is the serializable escalation state: current level, streak
// counter, and the timestamps the decay logic depends on.
type State struct {
	Level                   int       `json:"level"`
	ConsecutiveDistractions int       `json:"consecutive_distractions"`
	LastLevelChange         time.Time `json:"last_level_change"`
	LastProductive          time.Time `json:"last_productive"`
	LastSequence            int64     `json:"last_sequence"`
}

// Engine turns the stream of verdicts into graduated notifications. All
// transitions are serialized behind a mutex, so at most one state change
// happens at a time regardless of how verdicts arrive.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	state State
	emit  func(model.NotificationEvent)
	now   func() time.Time
}

// NewEngine creates an engine at level 0. emit receives notification
// events fire-and-forget; a nil emit discards them.
func NewEngine(cfg Config, emit func(model.NotificationEvent)) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid escalation config: %w", err)
	}
	if emit == nil {
		emit = func(model.NotificationEvent) {}
	}
	return &Engine{
		cfg:  cfg,
		emit: emit,
		now:  time.Now,
	}, nil
}

// Process applies one verdict. Verdicts older than the last processed
// sequence are discarded, so a slow classification result can never move
// the state machine backward.
func (e *Engine) Process(v model.Verdict) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v.Sequence <= e.state.LastSequence {
		util.LogDebugf("Discarding stale verdict seq=%d (last processed seq=%d)", v.Sequence, e.state.LastSequence)
		return
	}

	now := e.now()
	// Idle gaps decay the level before the new verdict is counted, so a
	// stale distraction streak does not stack with a fresh one.
	e.applyDecay(now)

	e.state.LastSequence = v.Sequence

	if !v.Distracted() {
		e.state.ConsecutiveDistractions = 0
		e.state.LastProductive = now
		if e.state.Level > 0 {
			// The decrement is silent: relief, not re-alerting.
			e.state.Level--
			e.state.LastLevelChange = now
			util.LogDebugf("Productive verdict seq=%d, level decremented to %d", v.Sequence, e.state.Level)
		}
		return
	}

	e.state.ConsecutiveDistractions++
	if e.state.ConsecutiveDistractions < e.cfg.threshold(e.state.Level) {
		return
	}

	// Threshold crossed: advance (capped) and notify. At the cap the
	// level stays put but the reminder repeats.
	e.state.ConsecutiveDistractions = 0
	if e.state.Level < e.cfg.MaxLevel {
		e.state.Level++
	}
	e.state.LastLevelChange = now

	msg := e.cfg.message(e.state.Level)
	event := model.NotificationEvent{
		Level:     e.state.Level,
		Message:   msg.Message,
		Tone:      msg.Tone,
		Timestamp: now,
	}
	util.LogInfof("Escalated to level %d (tone=%s)", event.Level, event.Tone)
	e.emit(event)
}

// CheckDecay applies timeout decay without a verdict. The scheduler
// invokes this on a timer so idle users drift back to baseline.
func (e *Engine) CheckDecay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyDecay(e.now())
}

// applyDecay steps the level toward 0, once per elapsed DecayTimeout
// since the last level change. Caller holds the lock.
func (e *Engine) applyDecay(now time.Time) {
	if e.state.Level == 0 || e.state.LastLevelChange.IsZero() {
		return
	}
	for e.state.Level > 0 && now.Sub(e.state.LastLevelChange) > e.cfg.DecayTimeout {
		e.state.Level--
		e.state.ConsecutiveDistractions = 0
		e.state.LastLevelChange = e.state.LastLevelChange.Add(e.cfg.DecayTimeout)
		util.LogDebugf("Decay: level reduced to %d", e.state.Level)
	}
}

// State returns a copy of the current escalation state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset returns the engine to its initial state, used when a monitoring
// session stops or restarts.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = State{}
}
