package reportsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSink_FIFO(t *testing.T) {
	s := NewMemorySink(zap.NewNop())

	s.Record("scam-one.com")
	s.Record("scam-two.com")

	report, ok := s.NextReport()
	assert.True(t, ok)
	assert.Equal(t, "scam-one.com", report)

	report, ok = s.NextReport()
	assert.True(t, ok)
	assert.Equal(t, "scam-two.com", report)

	_, ok = s.NextReport()
	assert.False(t, ok)
}

func TestSink_DeduplicatesPendingText(t *testing.T) {
	s := NewMemorySink(zap.NewNop())

	s.Record("scam-one.com")
	s.Record("scam-one.com")
	s.Record("scam-one.com")

	_, ok := s.NextReport()
	assert.True(t, ok)
	_, ok = s.NextReport()
	assert.False(t, ok, "duplicates collapse while pending")

	// Once drained, the same text may be reported again.
	s.Record("scam-one.com")
	report, ok := s.NextReport()
	assert.True(t, ok)
	assert.Equal(t, "scam-one.com", report)
}

func TestSink_IgnoresEmptyText(t *testing.T) {
	s := NewMemorySink(zap.NewNop())

	s.Record("")
	_, ok := s.NextReport()
	assert.False(t, ok)
}
