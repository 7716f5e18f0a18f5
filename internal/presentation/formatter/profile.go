package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/lockedin/go-focus-monitor/internal/core/profile"
)

// ProfileFormatter prints profiles for the list and show commands.
type ProfileFormatter struct {
	w io.Writer
}

func NewProfileFormatter() *ProfileFormatter {
	return &ProfileFormatter{w: os.Stdout}
}

func (f *ProfileFormatter) SetOutput(w io.Writer) {
	f.w = w
}

// FormatList prints one line per profile, marking the active one.
func (f *ProfileFormatter) FormatList(profiles []profile.Profile, active string) {
	maxWidth := terminalWidth()
	for _, p := range profiles {
		marker := " "
		if p.Name == active {
			marker = "*"
		}
		origin := "user"
		if p.BuiltIn {
			origin = "built-in"
		}
		line := fmt.Sprintf("%s %-16s %-9s %s", marker, p.Name, origin, strings.Join(p.Criteria, "; "))
		fmt.Fprintln(f.w, truncate(line, maxWidth))
	}
}

// FormatDetail prints the full profile definition.
func (f *ProfileFormatter) FormatDetail(p profile.Profile) {
	fmt.Fprintf(f.w, "Name:      %s\n", p.Name)
	if p.BuiltIn {
		fmt.Fprintln(f.w, "Origin:    built-in")
	} else {
		fmt.Fprintf(f.w, "Origin:    user (updated %s)\n", p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(f.w, "Criteria:")
	for _, c := range p.Criteria {
		fmt.Fprintf(f.w, "  - %s\n", c)
	}
	if len(p.Blocklist) > 0 {
		fmt.Fprintf(f.w, "Blocklist: %s\n", strings.Join(p.Blocklist, ", "))
	}
	if len(p.Allowlist) > 0 {
		fmt.Fprintf(f.w, "Allowlist: %s\n", strings.Join(p.Allowlist, ", "))
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 100
	}
	return width
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}
