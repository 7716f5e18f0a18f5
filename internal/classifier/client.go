// Package classifier wraps the external visual-classification call:
// given one capture and a profile snapshot it produces exactly one
// verdict. The transport behind the contract is interchangeable.
package classifier

import (
	"context"
	"errors"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

var (
	// ErrUnavailable means the backend was unreachable or timed out.
	// No verdict is fabricated; the caller decides whether to retry.
	ErrUnavailable = errors.New("classifier backend unavailable")
	// ErrMalformed means the backend answered but the response could
	// not be parsed into a verdict. Control flow treats it like
	// ErrUnavailable; it is logged distinctly.
	ErrMalformed = errors.New("classifier response malformed")
)

// Client classifies a single capture against an immutable profile
// snapshot. Classify may suspend while waiting on the external call and
// must return a verdict whose sequence matches the input capture.
type Client interface {
	Classify(ctx context.Context, capture model.Capture, profile model.ProfileSnapshot) (model.Verdict, error)
}
