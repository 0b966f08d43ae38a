package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageErrorKeepsCauseAndStack(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := NewStorageError(cause, "failed to save turn")

	assert.True(t, Is(err, CodeStorage))
	assert.True(t, stderrors.Is(err, cause), "cause must survive unwrapping")
	assert.Contains(t, err.Error(), "failed to save turn")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Stack, "errors_test.go", "stack must point at the construction site")
}

func TestStorageErrorNilCause(t *testing.T) {
	err := NewStorageError(nil, "failed to save turn")

	require.NoError(t, err.Unwrap())
	assert.Equal(t, "[STORAGE_ERROR] failed to save turn", err.Error())
}

func TestFromErrorPassesAppErrorThrough(t *testing.T) {
	original := NewNotFoundError("pet not found")

	assert.Same(t, original, FromError(original))
	assert.Equal(t, CodeInternal, FromError(stderrors.New("boom")).Code)
}
