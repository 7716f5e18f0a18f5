package monitor

import (
	"fmt"
	"strings"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// Sink receives notification events fire-and-forget. Rendering and
// dismissal are the sink's business; the engine never asks whether a
// notification was seen.
type Sink interface {
	Notify(event model.NotificationEvent)
}

// ConsoleSink prints notifications to stdout. A GUI frontend would
// replace this with a popup.
type ConsoleSink struct{}

// Notify prints the notification.
func (ConsoleSink) Notify(event model.NotificationEvent) {
	bangs := strings.Repeat("!", event.Level)
	fmt.Printf("\n  [%s] %s %s (level %d)\n\n",
		strings.ToUpper(event.Tone), event.Message, bangs, event.Level)
	util.LogInfof("Notification delivered: level=%d tone=%s", event.Level, event.Tone)
}

// discardSink swallows events, for tests and headless runs.
type discardSink struct{}

func (discardSink) Notify(model.NotificationEvent) {}
