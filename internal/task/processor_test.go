package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorStartsIdle(t *testing.T) {
	p := NewProcessor()

	_, ok := p.Current()
	assert.False(t, ok)
	_, ok = p.TakeCurrent()
	assert.False(t, ok)
}

func TestSetCurrentMarksRunning(t *testing.T) {
	p := NewProcessor()
	tcb := newTestTCB(t, 1, 16)

	p.SetCurrent(tcb)
	assert.Equal(t, StatusRunning, tcb.Status)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Same(t, tcb, cur)
}

func TestTakeCurrentEmptiesSlot(t *testing.T) {
	p := NewProcessor()
	tcb := newTestTCB(t, 1, 16)
	p.SetCurrent(tcb)

	got, ok := p.TakeCurrent()
	require.True(t, ok)
	assert.Same(t, tcb, got)

	_, ok = p.Current()
	assert.False(t, ok)
}

func TestDoubleInstallPanics(t *testing.T) {
	p := NewProcessor()
	p.SetCurrent(newTestTCB(t, 1, 16))

	assert.Panics(t, func() { p.SetCurrent(newTestTCB(t, 2, 16)) })
}

func TestIdleContextStable(t *testing.T) {
	p := NewProcessor()
	assert.Same(t, p.IdleContext(), p.IdleContext())
}
