package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndCodeOfWrappedErrors(t *testing.T) {
	enc := NewEncodingError("too long", "H", 1500, nil)
	wrapped := fmt.Errorf("render: %w", enc)

	assert.Equal(t, 422, StatusOf(wrapped))
	assert.Equal(t, CodeEncoding, CodeOf(wrapped))

	var target *EncodingError
	assert.True(t, stderrors.As(wrapped, &target))
	assert.Equal(t, 1500, target.Length)
}

func TestStatusOfPlainError(t *testing.T) {
	err := stderrors.New("boom")

	assert.Equal(t, 500, StatusOf(err))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("size must be an integer", "size", "abc")

	assert.Equal(t, 400, StatusOf(err))
	assert.Contains(t, err.Error(), "size must be an integer")
}

func TestCauseIsUnwrapped(t *testing.T) {
	cause := stderrors.New("redis down")
	err := NewCacheError("get failed", "get", "k", cause)

	assert.ErrorIs(t, err, cause)
}
