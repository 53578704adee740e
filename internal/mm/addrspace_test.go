package mm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAndUnmap(t *testing.T) {
	as := NewAddressSpace()

	require.NoError(t, as.Map(0x10000, 2*PageSize, ProtRead|ProtWrite))
	assert.Equal(t, 2, as.Pages())

	prot, ok := as.Mapped(0x10000 + 100)
	require.True(t, ok)
	assert.Equal(t, ProtRead|ProtWrite, prot)

	require.NoError(t, as.Unmap(0x10000, 2*PageSize))
	assert.Equal(t, 0, as.Pages())
}

func TestMapRoundsUpToPages(t *testing.T) {
	as := NewAddressSpace()

	require.NoError(t, as.Map(0x10000, PageSize+1, ProtRead))
	assert.Equal(t, 2, as.Pages())
}

func TestMapValidation(t *testing.T) {
	cases := []struct {
		name string
		addr uint64
		len  uint64
		prot Prot
		want error
	}{
		{"unaligned addr", 0x10001, PageSize, ProtRead, ErrBadAddress},
		{"zero length", 0x10000, 0, ProtRead, ErrBadAddress},
		{"empty prot", 0x10000, PageSize, 0, ErrBadProt},
		{"stray prot bits", 0x10000, PageSize, Prot(0x10), ErrBadProt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			as := NewAddressSpace()
			assert.ErrorIs(t, as.Map(tc.addr, tc.len, tc.prot), tc.want)
		})
	}
}

func TestMapOverlapLeavesSpaceUntouched(t *testing.T) {
	as := NewAddressSpace()
	require.NoError(t, as.Map(0x10000, PageSize, ProtRead))

	err := as.Map(0x10000-PageSize, 3*PageSize, ProtRead)
	assert.ErrorIs(t, err, ErrOverlap)

	// the failed map must not have installed its leading pages
	_, ok := as.Mapped(0x10000 - PageSize)
	assert.False(t, ok)
	assert.Equal(t, 1, as.Pages())
}

func TestUnmapHoleFails(t *testing.T) {
	as := NewAddressSpace()
	require.NoError(t, as.Map(0x10000, PageSize, ProtRead))
	require.NoError(t, as.Map(0x10000+2*PageSize, PageSize, ProtRead))

	err := as.Unmap(0x10000, 3*PageSize)
	assert.ErrorIs(t, err, ErrNotMapped)
	assert.Equal(t, 2, as.Pages(), "partial unmap must not happen")
}

func TestRemapAfterUnmap(t *testing.T) {
	as := NewAddressSpace()
	require.NoError(t, as.Map(0x10000, PageSize, ProtRead))
	require.NoError(t, as.Unmap(0x10000, PageSize))
	assert.NoError(t, as.Map(0x10000, PageSize, ProtExec))
}

func TestStackPool(t *testing.T) {
	p := NewStackPool(2)
	assert.Equal(t, 2, p.Available())

	a, err := p.Alloc()
	require.NoError(t, err)
	b, err := p.Alloc()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = p.Alloc()
	assert.ErrorIs(t, err, ErrOutOfStacks)

	p.Free(a)
	assert.Equal(t, 1, p.Available())
	_, err = p.Alloc()
	assert.NoError(t, err)
}

func TestStackPoolIgnoresNoneHandle(t *testing.T) {
	p := NewStackPool(1)
	p.Free(StackHandle(-1))
	assert.Equal(t, 1, p.Available())
}
