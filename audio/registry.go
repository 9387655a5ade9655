package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// ClickRegistry holds the decoded click buffers, indexed by click type. Buffers arrive asynchronously from a loader,
// so any slot may still be empty when a note is due.
type ClickRegistry struct {
	mu      sync.RWMutex
	ctx     Context
	buffers []*beep.Buffer
}

// NewClickRegistry creates a new ClickRegistry with room for total click types
func NewClickRegistry(ctx Context, total int) *ClickRegistry {
	if total < 0 {
		total = 0
	}
	return &ClickRegistry{
		ctx:     ctx,
		buffers: make([]*beep.Buffer, total),
	}
}

// Total returns the number of click types, loaded or not.
func (r *ClickRegistry) Total() int {
	return len(r.buffers)
}

// SetBuffers stores decoded buffers by index. Nil entries leave the slot empty. It matches the onReady signature of
// AssetLoader.
func (r *ClickRegistry) SetBuffers(buffers []*beep.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, buffer := range buffers {
		if i >= len(r.buffers) {
			break
		}
		if buffer != nil {
			r.buffers[i] = buffer
		}
	}
}

// Ready reports whether a buffer is available for the click type.
func (r *ClickRegistry) Ready(clickType int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clickType >= 0 && clickType < len(r.buffers) && r.buffers[clickType] != nil
}

// CreateTrigger returns a one-shot bound to the click type's buffer. ok is false when the buffer is not loaded; the
// caller skips the sound but carries on with the beat.
func (r *ClickRegistry) CreateTrigger(clickType int) (trigger OneShot, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if clickType < 0 || clickType >= len(r.buffers) || r.buffers[clickType] == nil {
		return nil, false
	}
	return r.ctx.NewOneShot(r.buffers[clickType]), true
}
