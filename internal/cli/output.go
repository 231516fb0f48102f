package cli

import (
	"io"
	"sync"
)

// outputSink forwards process output to the writer of the running command.
// Output written while no command is attached is dropped.
type outputSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *outputSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}

// redirect attaches w until the returned func is called.
func (s *outputSink) redirect(w io.Writer) func() {
	s.mu.Lock()
	prev := s.w
	s.w = w
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.w = prev
		s.mu.Unlock()
	}
}
