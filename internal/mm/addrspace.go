package mm

import (
	"errors"
	"fmt"
)

// PageSize is the mapping granularity.
const PageSize uint64 = 4096

// Prot bits for a mapped region.
type Prot uint8

const (
	ProtRead Prot = 1 << iota
	ProtWrite
	ProtExec
)

var (
	ErrBadAddress = errors.New("unaligned or malformed address range")
	ErrBadProt    = errors.New("invalid protection bits")
	ErrOverlap    = errors.New("range overlaps an existing mapping")
	ErrNotMapped  = errors.New("range is not fully mapped")
)

// AddressSpace tracks one task's virtual mappings at page granularity.
// The scheduling core only needs map/unmap bookkeeping; page tables and
// frames live behind this boundary.
type AddressSpace struct {
	pages map[uint64]Prot // page-aligned VA -> prot
}

func NewAddressSpace() *AddressSpace {
	return &AddressSpace{pages: make(map[uint64]Prot)}
}

// Map installs [addr, addr+length) with the given protection. The start
// address must be page aligned, prot must be a non-empty subset of R|W|X,
// and no page of the range may already be mapped. On failure nothing is
// mapped.
func (as *AddressSpace) Map(addr, length uint64, prot Prot) error {
	if addr%PageSize != 0 || length == 0 {
		return fmt.Errorf("%w: addr=%#x len=%d", ErrBadAddress, addr, length)
	}
	if prot == 0 || prot&^(ProtRead|ProtWrite|ProtExec) != 0 {
		return fmt.Errorf("%w: %#x", ErrBadProt, uint8(prot))
	}
	end := pageUp(addr + length)
	for va := addr; va < end; va += PageSize {
		if _, mapped := as.pages[va]; mapped {
			return fmt.Errorf("%w: page %#x", ErrOverlap, va)
		}
	}
	for va := addr; va < end; va += PageSize {
		as.pages[va] = prot
	}
	return nil
}

// Unmap removes [addr, addr+length). The whole range must be mapped;
// partial unmaps of unmapped holes fail and leave the space untouched.
func (as *AddressSpace) Unmap(addr, length uint64) error {
	if addr%PageSize != 0 || length == 0 {
		return fmt.Errorf("%w: addr=%#x len=%d", ErrBadAddress, addr, length)
	}
	end := pageUp(addr + length)
	for va := addr; va < end; va += PageSize {
		if _, mapped := as.pages[va]; !mapped {
			return fmt.Errorf("%w: page %#x", ErrNotMapped, va)
		}
	}
	for va := addr; va < end; va += PageSize {
		delete(as.pages, va)
	}
	return nil
}

// Mapped reports the protection of the page containing addr.
func (as *AddressSpace) Mapped(addr uint64) (Prot, bool) {
	p, ok := as.pages[addr-addr%PageSize]
	return p, ok
}

// Pages returns the number of mapped pages.
func (as *AddressSpace) Pages() int { return len(as.pages) }

func pageUp(addr uint64) uint64 {
	return (addr + PageSize - 1) / PageSize * PageSize
}
