package mailer

import (
	"context"
	"sync"
)

// Recorder keeps sent mail in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (r *Recorder) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, e)
	return nil
}

func (r *Recorder) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Email(nil), r.sent...)
}

// SetErr makes every later send fail with err; nil restores delivery.
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
