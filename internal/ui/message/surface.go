package message

import (
	"fmt"
	"io"
	"sync"
)

// WriterSurface prints region changes as lines, for terminals and logs.
type WriterSurface struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *WriterSurface) Render(visible bool, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visible {
		fmt.Fprintf(s.W, "[payment-message] %s\n", text)
		return
	}
	fmt.Fprintln(s.W, "[payment-message] (hidden)")
}

// Recorder keeps every rendered state. Handy in tests and for server-side
// pages that only need the first message.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

type Frame struct {
	Visible bool
	Text    string
}

func (r *Recorder) Render(visible bool, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Visible: visible, Text: text})
}

func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}
