// Package message is the single status region of the checkout page: one
// visible message at a time that hides itself after a fixed delay.
package message

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// HideAfter is how long a message stays visible.
const HideAfter = 4000 * time.Millisecond

// Surface receives every visible/text change of the region.
type Surface interface {
	Render(visible bool, text string)
}

type Region struct {
	clock   clockwork.Clock
	surface Surface

	mu      sync.Mutex
	visible bool
	text    string
	gen     uint64
	timer   clockwork.Timer
}

// New returns a hidden, empty region. A nil surface is allowed.
func New(clock clockwork.Clock, surface Surface) *Region {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Region{clock: clock, surface: surface}
}

// ShowMessage makes the region visible with text and restarts the hide
// timer. The last call wins.
func (r *Region) ShowMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	gen := r.gen
	if r.timer != nil {
		r.timer.Stop()
	}
	r.visible = true
	r.text = text
	r.render()

	r.timer = r.clock.AfterFunc(HideAfter, func() { r.hide(gen) })
}

func (r *Region) hide(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// a newer message owns the region
	if gen != r.gen {
		return
	}
	r.visible = false
	r.text = ""
	r.timer = nil
	r.render()
}

// State reports whether the region is visible and its current text.
func (r *Region) State() (visible bool, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible, r.text
}

// Close stops a pending hide.
func (r *Region) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Region) render() {
	if r.surface != nil {
		r.surface.Render(r.visible, r.text)
	}
}
