// Package capture acquires screen samples and annotates them with the
// foreground process. Capture failures are expected and non-fatal: the
// scheduler skips the tick and tries again on the next one.
package capture

import (
	"context"
	"errors"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

// ErrCaptureFailed wraps any failure of the screen-capture collaborator.
var ErrCaptureFailed = errors.New("screen capture failed")

// Source produces captures with monotonically increasing sequence
// numbers.
type Source interface {
	CaptureScreen(ctx context.Context) (model.Capture, error)
}
