package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// SessionTableFormatter renders recorded sessions as a bordered table.
type SessionTableFormatter struct {
	headers []string
	w       io.Writer
}

func NewSessionTableFormatter() *SessionTableFormatter {
	return &SessionTableFormatter{
		headers: []string{
			"Date", "Profile", "Duration", "Verdicts",
			"Distractions", "Peak Level", "Notifications",
		},
		w: os.Stdout,
	}
}

// SetOutput redirects the table, e.g. into a buffer for tests.
func (f *SessionTableFormatter) SetOutput(w io.Writer) {
	f.w = w
}

func (f *SessionTableFormatter) Format(sessions []model.SessionSummary) error {
	if len(sessions) == 0 {
		fmt.Fprintln(f.w, "No sessions recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, f.sessionRow(s))
	}

	widths := f.calculateColumnWidths(rows)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths)
	}
	f.printBorder(widths, "middle")
	f.printRow(f.totalRow(sessions), widths)
	f.printBorder(widths, "bottom")

	return nil
}

func (f *SessionTableFormatter) sessionRow(s model.SessionSummary) []string {
	return []string{
		s.StartTime.Format("2006-01-02 15:04"),
		s.Profile,
		util.FormatDuration(s.Duration()),
		fmt.Sprintf("%d", s.VerdictCount),
		fmt.Sprintf("%d", s.DistractionCount),
		fmt.Sprintf("%d", s.PeakLevel),
		fmt.Sprintf("%d", s.Notifications),
	}
}

func (f *SessionTableFormatter) totalRow(sessions []model.SessionSummary) []string {
	var duration time.Duration
	var verdicts, distractions, peak, notifications int
	for _, s := range sessions {
		duration += s.Duration()
		verdicts += s.VerdictCount
		distractions += s.DistractionCount
		notifications += s.Notifications
		if s.PeakLevel > peak {
			peak = s.PeakLevel
		}
	}
	return []string{
		"Total",
		"",
		util.FormatDuration(duration),
		fmt.Sprintf("%d", verdicts),
		fmt.Sprintf("%d", distractions),
		fmt.Sprintf("%d", peak),
		fmt.Sprintf("%d", notifications),
	}
}

// calculateColumnWidths sizes each column to its widest cell. Widths are
// display widths, so wide runes in profile names line up correctly.
func (f *SessionTableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 8 {
			widths[i] = 8
		}
	}
	return widths
}

func (f *SessionTableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Fprint(f.w, left)
	for i, width := range widths {
		fmt.Fprint(f.w, strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Fprint(f.w, middle)
		}
	}
	fmt.Fprintln(f.w, right)
}

func (f *SessionTableFormatter) printRow(values []string, widths []int) {
	fmt.Fprint(f.w, "│")
	for i, value := range values {
		if i <= 1 {
			// Date and Profile are left-aligned.
			fmt.Fprintf(f.w, " %s │", padString(value, widths[i], true))
		} else {
			fmt.Fprintf(f.w, " %s │", padString(value, widths[i], false))
		}
	}
	fmt.Fprintln(f.w)
}

// padString pads to a display width, handling wide runes correctly.
func padString(s string, width int, leftAlign bool) string {
	actual := runewidth.StringWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}
