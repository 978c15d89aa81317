package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	forbidden := NewPlatformError(ErrKindForbidden, "timeout", errors.New("denied"))

	assert.Equal(t, ErrKindForbidden, KindOf(forbidden))
	assert.Equal(t, ErrKindForbidden, KindOf(fmt.Errorf("wrapped: %w", forbidden)))
	assert.Equal(t, ErrKindOther, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindOther, KindOf(nil))
}

func TestPlatformErrorUnwrap(t *testing.T) {
	cause := errors.New("denied")
	err := NewPlatformError(ErrKindForbidden, "timeout", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}

func TestValidateTimeoutDays(t *testing.T) {
	assert.NoError(t, ValidateTimeoutDays(MinTimeoutDays))
	assert.NoError(t, ValidateTimeoutDays(MaxTimeoutDays))
	assert.ErrorIs(t, ValidateTimeoutDays(MinTimeoutDays-1), ErrInvalidTimeoutDays)
	assert.ErrorIs(t, ValidateTimeoutDays(MaxTimeoutDays+1), ErrInvalidTimeoutDays)
}
