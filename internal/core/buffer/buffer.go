package buffer

import (
	"errors"
	"fmt"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

// ErrEmpty is returned by Latest when no capture has been pushed yet.
var ErrEmpty = errors.New("activity buffer is empty")

// DefaultCapacity is the number of recent captures retained.
const DefaultCapacity = 10

// ActivityBuffer is a fixed-capacity, time-ordered ring of recent
// captures. It has a single writer (the scheduler); readers get copies,
// never a live view.
type ActivityBuffer struct {
	capacity int
	entries  []model.Capture
	head     int // index of the oldest entry
	count    int
	onEvict  func(model.EvictionNotice)
}

// New creates an ActivityBuffer. onEvict, if non-nil, is called with an
// eviction notice before the oldest entry is dropped to make room.
func New(capacity int, onEvict func(model.EvictionNotice)) *ActivityBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityBuffer{
		capacity: capacity,
		entries:  make([]model.Capture, capacity),
		onEvict:  onEvict,
	}
}

// Push appends one capture. At capacity the oldest entry is evicted
// first; the eviction notice fires before the new entry is stored.
func (b *ActivityBuffer) Push(c model.Capture) {
	if b.count == b.capacity {
		oldest := b.entries[b.head]
		if b.onEvict != nil {
			b.onEvict(model.EvictionNotice{Sequence: oldest.Sequence, Path: oldest.Path})
		}
		util.LogDebug(fmt.Sprintf("Evicted capture seq=%d to make room for seq=%d", oldest.Sequence, c.Sequence))
		b.entries[b.head] = c
		b.head = (b.head + 1) % b.capacity
		return
	}

	b.entries[(b.head+b.count)%b.capacity] = c
	b.count++
}

// Latest returns the most recently pushed capture.
func (b *ActivityBuffer) Latest() (model.Capture, error) {
	if b.count == 0 {
		return model.Capture{}, ErrEmpty
	}
	return b.entries[(b.head+b.count-1)%b.capacity], nil
}

// Snapshot returns the buffered captures oldest-first without mutating
// the buffer.
func (b *ActivityBuffer) Snapshot() []model.Capture {
	out := make([]model.Capture, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.head+i)%b.capacity]
	}
	return out
}

// Find returns the buffered capture with the given sequence number.
func (b *ActivityBuffer) Find(sequence int64) (model.Capture, bool) {
	for i := 0; i < b.count; i++ {
		c := b.entries[(b.head+i)%b.capacity]
		if c.Sequence == sequence {
			return c, true
		}
	}
	return model.Capture{}, false
}

// Len returns the number of buffered captures.
func (b *ActivityBuffer) Len() int {
	return b.count
}

// Capacity returns the configured capacity.
func (b *ActivityBuffer) Capacity() int {
	return b.capacity
}
