package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWithPathAndRecoverable(t *testing.T) {
	underlying := errors.New("boom")
	err := New(PerFileIO, "read", underlying).WithPath("src/main.py").WithRecoverable(true)

	assert.Equal(t, PerFileIO, err.Kind)
	assert.True(t, err.IsRecoverable())
	assert.Contains(t, err.Error(), "src/main.py")
	assert.ErrorIs(t, err, underlying)
}

func TestErrorWithoutPath(t *testing.T) {
	err := New(KvUnavailable, "ping", errors.New("refused"))
	assert.NotContains(t, err.Error(), "for")
}

func TestCollectorAccumulatesAndReturnsNilWhenEmpty(t *testing.T) {
	var c Collector
	require.NoError(t, c.Err())

	c.Add(nil)
	require.NoError(t, c.Err())

	c.Add(errors.New("one"))
	require.EqualError(t, c.Err(), "one")

	c.Add(errors.New("two"))
	err := c.Err()
	require.Error(t, err)
	var multi *MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 2)
}
