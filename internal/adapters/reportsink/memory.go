// Package reportsink collects evidence reports produced by the classifier so
// an operator can forward newly seen scam domains upstream.
package reportsink

import (
	"sync"

	"go.uber.org/zap"
)

// MemorySink is an in-memory FIFO of pending evidence reports, deduplicated
// by exact text.
type MemorySink struct {
	pending []string
	seen    map[string]struct{}
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewMemorySink creates an empty report sink.
func NewMemorySink(logger *zap.Logger) *MemorySink {
	return &MemorySink{
		seen:   make(map[string]struct{}),
		logger: logger,
	}
}

// Record queues an evidence report. Empty text and text already pending are
// ignored.
func (s *MemorySink) Record(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[text]; ok {
		return
	}
	s.seen[text] = struct{}{}
	s.pending = append(s.pending, text)
	s.logger.Debug("Queued evidence report", zap.Int("pending", len(s.pending)))
}

// NextReport pops the oldest pending report. The second return value is false
// when the sink is empty.
func (s *MemorySink) NextReport() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return "", false
	}
	text := s.pending[0]
	s.pending = s.pending[1:]
	delete(s.seen, text)
	return text, true
}
