package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

func TestRecorderSessionLifecycle(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)

	r.Start("developer")
	r.RecordVerdict(model.Verdict{Sequence: 1, Label: model.VerdictProductive})
	r.RecordVerdict(model.Verdict{Sequence: 2, Label: model.VerdictDistracted})
	r.RecordVerdict(model.Verdict{Sequence: 3, Label: model.VerdictDistracted})
	r.RecordNotification(model.NotificationEvent{Level: 1, Message: "hey"})
	r.RecordNotification(model.NotificationEvent{Level: 2, Message: "hey!"})

	summary := r.Summary()
	assert.Equal(t, "developer", summary.Profile)
	assert.Equal(t, 3, summary.VerdictCount)
	assert.Equal(t, 2, summary.DistractionCount)
	assert.Equal(t, 2, summary.Notifications)
	assert.Equal(t, 2, summary.PeakLevel)

	require.NoError(t, r.Finish())

	sessions, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "developer", sessions[0].Profile)
	assert.Equal(t, 2, sessions[0].DistractionCount)
	assert.NotEmpty(t, sessions[0].File)
	assert.False(t, sessions[0].EndTime.IsZero())
}

func TestRecorderIgnoresEventsWhenInactive(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)

	r.RecordVerdict(model.Verdict{Sequence: 1, Label: model.VerdictDistracted})
	r.RecordNotification(model.NotificationEvent{Level: 1})

	assert.Equal(t, 0, r.Summary().VerdictCount)
	assert.NoError(t, r.Finish(), "finishing without a session is a no-op")

	sessions, err := r.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionsNewestFirst(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	require.NoError(t, err)

	r.Start("developer")
	r.mu.Lock()
	r.summary.StartTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	r.mu.Unlock()
	require.NoError(t, r.Finish())

	r.Start("writer")
	r.mu.Lock()
	r.summary.StartTime = time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	r.mu.Unlock()
	require.NoError(t, r.Finish())

	sessions, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "writer", sessions[0].Profile)
	assert.Equal(t, "developer", sessions[1].Profile)
}

func TestSessionsSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)

	r.Start("developer")
	require.NoError(t, r.Finish())
	r.Start("writer")
	require.NoError(t, r.Finish())

	sessions, err := r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Remove one session file; the index entry should be skipped.
	require.NoError(t, os.Remove(filepath.Join(dir, sessions[0].File)))

	sessions, err = r.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestHandleEvictionRemovesScreenshot(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "screenshot_1.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	r.HandleEviction(model.EvictionNotice{Sequence: 1, Path: path})
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Missing files and empty paths are tolerated.
	r.HandleEviction(model.EvictionNotice{Sequence: 2, Path: path})
	r.HandleEviction(model.EvictionNotice{Sequence: 3})
}
