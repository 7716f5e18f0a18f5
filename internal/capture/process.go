package capture

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/lockedin/go-focus-monitor/internal/util"
)

// ProcessSampler resolves the foreground window's process name and
// title. Every lookup is best-effort: a desktop without the needed
// tooling simply yields empty strings and the capture goes to the
// classifier without annotation.
type ProcessSampler struct{}

// NewProcessSampler creates a sampler for the current platform.
func NewProcessSampler() *ProcessSampler {
	return &ProcessSampler{}
}

// Foreground returns the foreground process name and window title.
func (s *ProcessSampler) Foreground(ctx context.Context) (name, title string) {
	switch runtime.GOOS {
	case "linux":
		return s.foregroundLinux(ctx)
	case "darwin":
		return s.foregroundDarwin(ctx)
	default:
		return "", ""
	}
}

func (s *ProcessSampler) foregroundLinux(ctx context.Context) (string, string) {
	title := commandOutput(ctx, "xdotool", "getactivewindow", "getwindowname")

	pidStr := commandOutput(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if pidStr == "" {
		return "", title
	}
	pid, err := strconv.ParseInt(pidStr, 10, 32)
	if err != nil {
		util.LogDebugf("Unparseable foreground pid %q: %v", pidStr, err)
		return "", title
	}

	return processName(int32(pid)), title
}

func (s *ProcessSampler) foregroundDarwin(ctx context.Context) (string, string) {
	name := commandOutput(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`)
	title := commandOutput(ctx, "osascript", "-e",
		`tell application "System Events" to get title of front window of (first application process whose frontmost is true)`)
	return name, title
}

// processName resolves a pid to its executable name via gopsutil.
func processName(pid int32) string {
	p, err := process.NewProcess(pid)
	if err != nil {
		util.LogDebugf("Failed to inspect process %d: %v", pid, err)
		return ""
	}
	name, err := p.Name()
	if err != nil {
		util.LogDebugf("Failed to read name of process %d: %v", pid, err)
		return ""
	}
	return strings.ToLower(name)
}

// Running reports whether any running process matches one of the given
// names, for profiles that block an application outright regardless of
// focus.
func (s *ProcessSampler) Running(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	procs, err := process.Processes()
	if err != nil {
		util.LogDebugf("Failed to list processes: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	var matched []string
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		pname = strings.ToLower(pname)
		for _, want := range names {
			if strings.Contains(pname, strings.ToLower(strings.TrimSuffix(want, ".exe"))) && !seen[pname] {
				seen[pname] = true
				matched = append(matched, pname)
			}
		}
	}
	return matched
}

func commandOutput(ctx context.Context, name string, args ...string) string {
	if _, err := exec.LookPath(name); err != nil {
		return ""
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		util.LogDebugf("%s failed: %v", name, err)
		return ""
	}
	return strings.TrimSpace(string(out))
}
