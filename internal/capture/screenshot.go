package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// ScreenshotSource captures the screen with the platform's screenshot
// tool, writes the image under dir, and annotates the capture with the
// foreground process reported by the sampler.
type ScreenshotSource struct {
	dir      string
	sampler  *ProcessSampler
	sequence atomic.Int64
}

// NewScreenshotSource creates a screenshot source writing into dir.
func NewScreenshotSource(dir string, sampler *ProcessSampler) (*ScreenshotSource, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	return &ScreenshotSource{dir: dir, sampler: sampler}, nil
}

// CaptureScreen takes one screenshot. The sequence number advances even
// on failure so a later success never reuses a failed slot.
func (s *ScreenshotSource) CaptureScreen(ctx context.Context) (model.Capture, error) {
	seq := s.sequence.Add(1)
	now := time.Now()
	path := filepath.Join(s.dir, fmt.Sprintf("screenshot_%d_%d.png", now.UnixNano(), seq))

	if err := takeScreenshot(ctx, path); err != nil {
		return model.Capture{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		os.Remove(path)
		return model.Capture{}, fmt.Errorf("%w: reading %s: %v", ErrCaptureFailed, path, err)
	}

	c := model.Capture{
		Sequence:  seq,
		Timestamp: now,
		Path:      path,
		Payload:   payload,
	}
	if s.sampler != nil {
		c.Process, c.WindowTitle = s.sampler.Foreground(ctx)
	}
	return c, nil
}

// takeScreenshot shells out to the platform screenshot tool. The first
// available tool wins on Linux.
func takeScreenshot(ctx context.Context, path string) error {
	switch runtime.GOOS {
	case "darwin":
		return runQuiet(ctx, "screencapture", "-x", path)
	case "linux":
		candidates := [][]string{
			{"gnome-screenshot", "-f", path},
			{"scrot", "--overwrite", path},
			{"import", "-window", "root", path},
		}
		var lastErr error
		for _, c := range candidates {
			if _, err := exec.LookPath(c[0]); err != nil {
				lastErr = err
				continue
			}
			if err := runQuiet(ctx, c[0], c[1:]...); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
		return fmt.Errorf("no screenshot tool succeeded: %v", lastErr)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

func runQuiet(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %v: %s", name, err, out)
	}
	return nil
}
