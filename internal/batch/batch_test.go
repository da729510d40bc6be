package batch

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/mist/internal/result"
)

type notifier struct {
	calls int
	err   error
}

func (n *notifier) notify() error {
	n.calls++
	return n.err
}

func TestDoubleBegin(t *testing.T) {
	var g Guard
	n := &notifier{}

	require.NoError(t, g.Begin(n.notify))
	err := g.Begin(n.notify)

	assert.True(t, errors.Is(err, result.ErrBatchAlreadyOpen))
	assert.True(t, g.Open())
	assert.Equal(t, 1, n.calls, "rejected begin must not reach the helper")
}

func TestDoubleEnd(t *testing.T) {
	var g Guard
	n := &notifier{}

	require.NoError(t, g.Begin(n.notify))
	require.NoError(t, g.End(n.notify))
	err := g.End(n.notify)

	assert.True(t, errors.Is(err, result.ErrBatchNotOpen))
	assert.False(t, g.Open())
	assert.Equal(t, 2, n.calls)
}

func TestEndWithoutBegin(t *testing.T) {
	var g Guard
	n := &notifier{}

	err := g.End(n.notify)
	assert.True(t, errors.Is(err, result.ErrBatchNotOpen))
	assert.Zero(t, n.calls)
}

func TestRepeatedCycles(t *testing.T) {
	var g Guard
	for i := 0; i < 2; i++ {
		require.NoError(t, g.Begin(nil))
		require.NoError(t, g.End(nil))
	}
	assert.False(t, g.Open())
}

func TestBeginNotifyFailureStaysClosed(t *testing.T) {
	var g Guard
	n := &notifier{err: result.ErrTimeout}

	err := g.Begin(n.notify)
	assert.True(t, errors.Is(err, result.ErrTimeout))
	assert.False(t, g.Open())
}

func TestEndNotifyFailureStillCloses(t *testing.T) {
	var g Guard
	require.NoError(t, g.Begin(nil))

	err := g.End((&notifier{err: result.ErrSubprocessLost}).notify)
	assert.True(t, errors.Is(err, result.ErrSubprocessLost))
	assert.False(t, g.Open())
}

func TestReset(t *testing.T) {
	var g Guard
	require.NoError(t, g.Begin(nil))
	g.Reset()
	assert.False(t, g.Open())
	require.NoError(t, g.Begin(nil))
}
