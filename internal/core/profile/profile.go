package profile

import (
	"strings"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

// Profile is a named set of classification criteria defining what
// "productive" means for a user. Built-in profiles ship with the binary
// and cannot be deleted.
type Profile struct {
	Name      string    `json:"name"`
	Criteria  []string  `json:"criteria"`
	Blocklist []string  `json:"blocklist,omitempty"` // process names that are always distracting
	Allowlist []string  `json:"allowlist,omitempty"` // process names that are always productive
	BuiltIn   bool      `json:"built_in"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Snapshot returns an immutable copy of the profile's criteria for use by
// an in-flight classification request.
func (p Profile) Snapshot() model.ProfileSnapshot {
	return model.ProfileSnapshot{
		Name:      p.Name,
		Criteria:  append([]string(nil), p.Criteria...),
		Blocklist: append([]string(nil), p.Blocklist...),
		Allowlist: append([]string(nil), p.Allowlist...),
		TakenAt:   time.Now(),
	}
}

// clone returns a deep copy so registry readers never alias stored slices.
func (p Profile) clone() Profile {
	p.Criteria = append([]string(nil), p.Criteria...)
	p.Blocklist = append([]string(nil), p.Blocklist...)
	p.Allowlist = append([]string(nil), p.Allowlist...)
	return p
}

// MatchesProcess reports whether a process name matches any entry of the
// list. Comparison is case-insensitive, strips a trailing .exe from both
// sides, and matches when either base name contains the other.
func MatchesProcess(list []string, process string) bool {
	if process == "" || len(list) == 0 {
		return false
	}
	processBase := normalizeProcess(process)

	for _, item := range list {
		itemBase := normalizeProcess(item)
		if itemBase == "" {
			continue
		}
		if processBase == itemBase ||
			strings.Contains(processBase, itemBase) ||
			strings.Contains(itemBase, processBase) {
			return true
		}
	}
	return false
}

func normalizeProcess(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".exe")
}

// browsers are never judged by binary name alone; their window content
// decides, so the fast path skips them.
var browsers = []string{
	"chrome", "firefox", "msedge", "opera", "brave", "safari", "vivaldi", "waterfox",
}

// IsBrowser reports whether the process is a known web browser.
func IsBrowser(process string) bool {
	base := normalizeProcess(process)
	if base == "" {
		return false
	}
	for _, b := range browsers {
		if base == b || strings.Contains(base, b) {
			return true
		}
	}
	return false
}
