package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingError_WrapsSentinel(t *testing.T) {
	err := NewRecordingError("GetByID", "rec-1", ErrRecordingNotFound)

	assert.True(t, errors.Is(err, ErrRecordingNotFound))
	assert.True(t, IsRecordingNotFound(err))
	assert.Contains(t, err.Error(), "GetByID")
	assert.Contains(t, err.Error(), "rec-1")
}

func TestActionError_WrapsSentinel(t *testing.T) {
	err := NewActionError("Update", "act-7", ErrActionNotFound)

	assert.True(t, errors.Is(err, ErrActionNotFound))
	assert.True(t, IsActionNotFound(err))
	assert.Contains(t, err.Error(), "act-7")
}

func TestIsNotFound(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"recording not found", ErrRecordingNotFound, true},
		{"action not found", ErrActionNotFound, true},
		{"snapshot not found", ErrSnapshotNotFound, true},
		{"wrapped recording not found", fmt.Errorf("load: %w", ErrRecordingNotFound), true},
		{"other error", errors.New("disk full"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.notFound, IsNotFound(tc.err))
		})
	}
}
