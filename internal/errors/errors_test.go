package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{ErrProvider, ErrConfig, ErrInterval, ErrRecord}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestError_Format(t *testing.T) {
	err := WrapWithCode(fmt.Errorf("permission denied"), ErrRecord,
		"Failed to append log record", "Check write access to the working directory")

	out := err.Error()
	assert.True(t, strings.HasPrefix(out, "✗ Failed to append log record\n"))
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "Check write access")
}

func TestError_Short(t *testing.T) {
	plain := New(ErrInterval, "Logging interval must be a positive integer", "")
	assert.Equal(t, "Logging interval must be a positive integer", plain.Short())

	wrapped := WrapWithCode(fmt.Errorf("disk full"), ErrRecord, "Failed to append log record", "")
	assert.Equal(t, "Failed to append log record: disk full", wrapped.Short())
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "bad config", "")
	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrRecord))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrConfig))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, ErrConfig))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := WrapWithCode(cause, ErrProvider, "refresh failed", "")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Summary(nil))
	assert.Equal(t, "line one line two", Summary(fmt.Errorf("line one\nline two")))
	assert.Equal(t, "refresh failed: boom",
		Summary(WrapWithCode(fmt.Errorf("boom"), ErrProvider, "refresh failed", "retry")))
}
