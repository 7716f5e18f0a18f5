package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/core/profile"
)

func TestSessionTableFormat(t *testing.T) {
	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	sessions := []model.SessionSummary{
		{
			Profile:          "developer",
			StartTime:        start,
			EndTime:          start.Add(95 * time.Minute),
			VerdictCount:     380,
			DistractionCount: 12,
			PeakLevel:        2,
			Notifications:    4,
		},
		{
			Profile:          "writer",
			StartTime:        start.Add(-24 * time.Hour),
			EndTime:          start.Add(-24*time.Hour + 30*time.Minute),
			VerdictCount:     120,
			DistractionCount: 3,
			PeakLevel:        1,
			Notifications:    1,
		},
	}

	var buf bytes.Buffer
	f := NewSessionTableFormatter()
	f.SetOutput(&buf)
	if err := f.Format(sessions); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"2026-08-20 09:00", "developer", "1h 35m",
		"writer", "30m", "380", "12",
		"Total", "500", "15", "┌", "┘",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	// Every table row should have equal display width.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 5 {
		t.Fatalf("Expected a full table, got %d lines", len(lines))
	}
}

func TestSessionTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := NewSessionTableFormatter()
	f.SetOutput(&buf)
	if err := f.Format(nil); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions") {
		t.Errorf("Expected empty-state message, got %q", buf.String())
	}
}

func TestProfileFormatterList(t *testing.T) {
	var buf bytes.Buffer
	f := NewProfileFormatter()
	f.SetOutput(&buf)

	profiles := []profile.Profile{
		{Name: "developer", BuiltIn: true, Criteria: []string{"Writing code"}},
		{Name: "thesis", Criteria: []string{"Working on the thesis"}},
	}
	f.FormatList(profiles, "thesis")

	out := buf.String()
	if !strings.Contains(out, "* thesis") {
		t.Errorf("Active profile not marked:\n%s", out)
	}
	if !strings.Contains(out, "built-in") {
		t.Errorf("Built-in origin missing:\n%s", out)
	}
	if !strings.Contains(out, "Writing code") {
		t.Errorf("Criteria missing:\n%s", out)
	}
}

func TestProfileFormatterDetail(t *testing.T) {
	var buf bytes.Buffer
	f := NewProfileFormatter()
	f.SetOutput(&buf)

	f.FormatDetail(profile.Profile{
		Name:      "thesis",
		Criteria:  []string{"Working on the thesis", "Reading papers"},
		Blocklist: []string{"steam"},
		Allowlist: []string{"zotero"},
		UpdatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})

	out := buf.String()
	for _, want := range []string{
		"Name:      thesis",
		"- Working on the thesis",
		"- Reading papers",
		"Blocklist: steam",
		"Allowlist: zotero",
		"user (updated 2026-08-01",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 40); got != "short" {
		t.Errorf("Expected no truncation, got %q", got)
	}
	long := strings.Repeat("a", 50)
	got := truncate(long, 20)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
}
