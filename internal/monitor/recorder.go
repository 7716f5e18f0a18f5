package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

const indexFileName = "sessions_index.json"

// Recorder accumulates one monitoring session's statistics and persists
// them on finish. It also owns screenshot disk I/O: eviction notices
// from the activity buffer delete the evicted file here.
type Recorder struct {
	mu          sync.Mutex
	sessionsDir string
	summary     model.SessionSummary
	active      bool
}

// NewRecorder creates a recorder writing into sessionsDir.
func NewRecorder(sessionsDir string) (*Recorder, error) {
	if err := util.EnsureDir(sessionsDir); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Recorder{sessionsDir: sessionsDir}, nil
}

// Start begins a new session for the given profile.
func (r *Recorder) Start(profileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = model.SessionSummary{
		Profile:   profileName,
		StartTime: time.Now(),
	}
	r.active = true
}

// RecordVerdict counts one processed verdict.
func (r *Recorder) RecordVerdict(v model.Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.summary.VerdictCount++
	if v.Distracted() {
		r.summary.DistractionCount++
	}
}

// RecordNotification counts one emitted notification and tracks the
// peak escalation level.
func (r *Recorder) RecordNotification(e model.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.summary.Notifications++
	if e.Level > r.summary.PeakLevel {
		r.summary.PeakLevel = e.Level
	}
}

// HandleEviction deletes the screenshot file backing an evicted capture.
func (r *Recorder) HandleEviction(n model.EvictionNotice) {
	if n.Path == "" {
		return
	}
	if err := os.Remove(n.Path); err != nil && !os.IsNotExist(err) {
		util.LogWarnf("Failed to delete evicted screenshot %s: %v", n.Path, err)
		return
	}
	util.LogDebugf("Deleted evicted screenshot seq=%d: %s", n.Sequence, n.Path)
}

// Finish closes the session and saves it together with the index entry.
func (r *Recorder) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return nil
	}
	r.active = false
	r.summary.EndTime = time.Now()

	filename := fmt.Sprintf("session_%s.json", r.summary.StartTime.Format("20060102_150405"))
	if err := writeJSON(filepath.Join(r.sessionsDir, filename), r.summary); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	index, err := r.loadIndex()
	if err != nil {
		util.LogWarnf("Rebuilding sessions index: %v", err)
		index = &sessionIndex{}
	}
	index.Sessions = append(index.Sessions, sessionIndexEntry{
		File:         filename,
		Timestamp:    r.summary.StartTime.Format("20060102_150405"),
		Date:         r.summary.StartTime,
		Distractions: r.summary.DistractionCount,
	})
	// Newest first.
	sort.Slice(index.Sessions, func(i, j int) bool {
		return index.Sessions[i].Timestamp > index.Sessions[j].Timestamp
	})
	if err := writeJSON(filepath.Join(r.sessionsDir, indexFileName), index); err != nil {
		return fmt.Errorf("failed to save sessions index: %w", err)
	}

	util.LogInfof("Session saved: %s (%d verdicts, %d distractions, peak level %d)",
		filename, r.summary.VerdictCount, r.summary.DistractionCount, r.summary.PeakLevel)
	return nil
}

// Summary returns a copy of the running session's statistics.
func (r *Recorder) Summary() model.SessionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Sessions loads all recorded sessions, newest first. Entries whose
// files went missing are skipped.
func (r *Recorder) Sessions() ([]model.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	var sessions []model.SessionSummary
	for _, entry := range index.Sessions {
		path := filepath.Join(r.sessionsDir, entry.File)
		data, err := os.ReadFile(path)
		if err != nil {
			util.LogWarnf("Skipping missing session file %s: %v", entry.File, err)
			continue
		}
		var s model.SessionSummary
		if err := sonic.Unmarshal(data, &s); err != nil {
			util.LogWarnf("Skipping unreadable session file %s: %v", entry.File, err)
			continue
		}
		s.File = entry.File
		sessions = append(sessions, s)
	}
	return sessions, nil
}

type sessionIndex struct {
	Sessions []sessionIndexEntry `json:"sessions"`
}

type sessionIndexEntry struct {
	File         string    `json:"file"`
	Timestamp    string    `json:"timestamp"`
	Date         time.Time `json:"date"`
	Distractions int       `json:"distractions"`
}

func (r *Recorder) loadIndex() (*sessionIndex, error) {
	data, err := os.ReadFile(filepath.Join(r.sessionsDir, indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &sessionIndex{}, nil
		}
		return nil, err
	}
	var index sessionIndex
	if err := sonic.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
