package classify

import (
	"context"
	"io"
	"sync"
)

// Recorder keeps at most one live session open. Starting a new recording
// closes the previous one first so two sessions never share a microphone.
type Recorder struct {
	c *Classifier

	mu      sync.Mutex
	current *LiveSession
}

func NewRecorder(c *Classifier) *Recorder {
	return &Recorder{c: c}
}

// Start closes any open session, then opens a new one over audio.
func (r *Recorder) Start(ctx context.Context, audio io.ReadCloser, cb Callbacks) (*LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Close()
		r.current = nil
	}
	s, err := r.c.OpenLiveSession(ctx, audio, cb)
	if err != nil {
		return nil, err
	}
	r.current = s
	return s, nil
}

// Stop finishes the open session, if any, and waits for its final entry.
func (r *Recorder) Stop() {
	r.mu.Lock()
	s := r.current
	r.current = nil
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Close drops the open session without a final entry.
func (r *Recorder) Close() {
	r.mu.Lock()
	s := r.current
	r.current = nil
	r.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// Active returns the open session or nil.
func (r *Recorder) Active() *LiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.State() == StateClosed {
		r.current = nil
	}
	return r.current
}
