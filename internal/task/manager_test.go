package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchNextEmpty(t *testing.T) {
	m := NewManager()

	tcb, ok := m.FetchNext()
	assert.False(t, ok)
	assert.Nil(t, tcb)
}

func TestInsertMarksReady(t *testing.T) {
	m := NewManager()
	tcb := newTestTCB(t, 1, 16)

	m.Insert(tcb)
	assert.Equal(t, StatusReady, tcb.Status)
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Contains(1))
}

func TestFetchNextMinimumStride(t *testing.T) {
	m := NewManager()
	a := newTestTCB(t, 1, 16)
	b := newTestTCB(t, 2, 16)
	c := newTestTCB(t, 3, 16)
	a.stride = 30
	b.stride = 10
	c.stride = 20
	m.Insert(a)
	m.Insert(b)
	m.Insert(c)

	for _, want := range []Pid{2, 3, 1} {
		got, ok := m.FetchNext()
		require.True(t, ok)
		assert.Equal(t, want, got.Pid)
	}
	_, ok := m.FetchNext()
	assert.False(t, ok)
}

func TestFetchNextWraparound(t *testing.T) {
	// 250 sits within half-range before 5 and 10 once the counter wraps;
	// the queue must treat it as the minimum.
	m := NewManager()
	a := newTestTCB(t, 1, 16)
	b := newTestTCB(t, 2, 16)
	c := newTestTCB(t, 3, 16)
	a.stride = lift8(5)
	b.stride = lift8(250)
	c.stride = lift8(10)
	m.Insert(a)
	m.Insert(b)
	m.Insert(c)

	for _, want := range []Pid{2, 1, 3} {
		got, ok := m.FetchNext()
		require.True(t, ok)
		assert.Equal(t, want, got.Pid)
	}
}

func TestEqualStridesDequeueFIFO(t *testing.T) {
	m := NewManager()
	for pid := Pid(1); pid <= 5; pid++ {
		m.Insert(newTestTCB(t, pid, 16))
	}

	for want := Pid(1); want <= 5; want++ {
		got, ok := m.FetchNext()
		require.True(t, ok)
		assert.Equal(t, want, got.Pid)
	}
}

func TestInsertRunningPanics(t *testing.T) {
	m := NewManager()
	tcb := newTestTCB(t, 1, 16)
	tcb.Status = StatusRunning

	assert.Panics(t, func() { m.Insert(tcb) })
}

func TestInsertDuplicatePanics(t *testing.T) {
	m := NewManager()
	tcb := newTestTCB(t, 1, 16)
	m.Insert(tcb)

	assert.Panics(t, func() { m.Insert(tcb) })
}

func TestFetchRunningPanics(t *testing.T) {
	m := NewManager()
	tcb := newTestTCB(t, 1, 16)
	m.Insert(tcb)
	tcb.Status = StatusRunning // corrupted elsewhere

	assert.Panics(t, func() { m.FetchNext() })
}

func TestAdjustRecomputesPassInPlace(t *testing.T) {
	m := NewManager()
	a := newTestTCB(t, 1, 16)
	a.stride = 40
	m.Insert(a)

	require.NoError(t, m.Adjust(1, 4))
	assert.Equal(t, int64(4), a.Priority())
	assert.Equal(t, BigStride/4, a.Pass())
	assert.Equal(t, Stride(40), a.Stride(), "stride must survive a requeue")

	got, ok := m.FetchNext()
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestAdjustUnknownPid(t *testing.T) {
	m := NewManager()

	err := m.Adjust(99, 4)
	assert.ErrorIs(t, err, ErrNoSuchTask)
}

func TestAdjustInvalidPriorityLeavesQueueIntact(t *testing.T) {
	m := NewManager()
	a := newTestTCB(t, 1, 16)
	m.Insert(a)

	err := m.Adjust(1, 1)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	assert.Equal(t, int64(16), a.Priority())
	assert.Equal(t, 1, m.Len())
}

func TestForEachVisitsSelectionOrder(t *testing.T) {
	m := NewManager()
	a := newTestTCB(t, 1, 16)
	b := newTestTCB(t, 2, 16)
	a.stride = 20
	b.stride = 10
	m.Insert(a)
	m.Insert(b)

	var order []Pid
	m.ForEach(func(tcb *TCB) { order = append(order, tcb.Pid) })
	assert.Equal(t, []Pid{2, 1}, order)
}
