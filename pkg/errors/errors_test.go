package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsMatchByType(t *testing.T) {
	err := New(ErrorTypePoolExhausted, "all 4 slots live")

	assert.True(t, stderrors.Is(err, ErrPoolExhausted))
	assert.False(t, stderrors.Is(err, ErrLoadFailed))

	wrapped := fmt.Errorf("acquire sprite: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrPoolExhausted))
	assert.True(t, IsType(wrapped, ErrorTypePoolExhausted))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeFile, "open failed")
	outer := Wrap(inner, ErrorTypeLoadFailed, "load failed")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Same(t, inner, stderrors.Unwrap(outer))
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestLoadFailedDetails(t *testing.T) {
	err := LoadFailed("audio", "sfx/jump.wav", io.EOF)

	assert.Equal(t, ErrorTypeLoadFailed, err.Type)
	assert.Equal(t, "audio", err.Detail("pool"))
	assert.Equal(t, "sfx/jump.wav", err.Detail("key"))
	assert.ErrorIs(t, err, io.EOF)
	assert.NotEmpty(t, err.Stack)
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(io.EOF))
	assert.True(t, IsRecoverable(ErrStaleHandle))
	assert.False(t, IsRecoverable(Newf(ErrorTypeOutOfRange, "pointer %p", t)))
}
