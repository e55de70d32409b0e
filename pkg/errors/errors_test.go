package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinels(t *testing.T) {
	wrapped := Wrap(ErrUnauthorized, "fetch stories")
	require.EqualError(t, wrapped, "fetch stories: unauthorized")
	require.True(t, stderrors.Is(wrapped, ErrUnauthorized))
	require.True(t, IsUnauthorized(wrapped))
	require.False(t, IsServiceUnavailable(wrapped))
}

func TestWrapNilIsNil(t *testing.T) {
	require.NoError(t, Wrap(nil, "anything"))
}

func TestWrapNestsThroughLayers(t *testing.T) {
	inner := Wrap(ErrServiceUnavailable, "do request")
	outer := Wrap(inner, "fetch stories")
	require.True(t, IsServiceUnavailable(outer))
	require.EqualError(t, outer, "fetch stories: do request: service unavailable")
}
