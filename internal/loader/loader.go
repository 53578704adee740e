// Package loader resolves program image identifiers for spawn. A real
// kernel would parse ELF here; this registry keeps the same boundary with
// static images.
package loader

import (
	"errors"
	"fmt"

	"strideos/internal/mm"
	"strideos/internal/task"
)

const (
	userStackTop  uint64 = 0x8000_0000
	userStackSize        = 8 * mm.PageSize
)

var ErrImageNotFound = errors.New("image not found")

// Segment is one mapped region of a program image.
type Segment struct {
	Addr uint64
	Len  uint64
	Prot mm.Prot
}

// Image is a loadable program: an entry point plus its static segments.
type Image struct {
	Entry    uint64
	Segments []Segment
}

// Registry maps image identifiers to images.
type Registry struct {
	images map[string]Image
}

func NewRegistry() *Registry {
	return &Registry{images: make(map[string]Image)}
}

// Register makes an image available under name, replacing any previous
// binding.
func (r *Registry) Register(name string, img Image) {
	r.images[name] = img
}

// Load builds a fresh address space and entry trap context for the named
// image. Every call produces a new space; spawn never copies the caller's
// memory.
func (r *Registry) Load(name string) (*mm.AddressSpace, task.TrapContext, error) {
	img, ok := r.images[name]
	if !ok {
		return nil, task.TrapContext{}, fmt.Errorf("%w: %q", ErrImageNotFound, name)
	}
	space := mm.NewAddressSpace()
	for _, seg := range img.Segments {
		if err := space.Map(seg.Addr, seg.Len, seg.Prot); err != nil {
			return nil, task.TrapContext{}, fmt.Errorf("image %q: %w", name, err)
		}
	}
	if err := space.Map(userStackTop-userStackSize, userStackSize, mm.ProtRead|mm.ProtWrite); err != nil {
		return nil, task.TrapContext{}, fmt.Errorf("image %q: user stack: %w", name, err)
	}
	tc := task.TrapContext{
		Entry:  img.Entry,
		UserSP: userStackTop,
	}
	return space, tc, nil
}

// Builtin returns a registry preloaded with the demo images used by the
// strideos binary.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("init", Image{
		Entry: 0x1000,
		Segments: []Segment{
			{Addr: 0x1000, Len: 2 * mm.PageSize, Prot: mm.ProtRead | mm.ProtExec},
			{Addr: 0x4000, Len: mm.PageSize, Prot: mm.ProtRead | mm.ProtWrite},
		},
	})
	r.Register("shell", Image{
		Entry: 0x1000,
		Segments: []Segment{
			{Addr: 0x1000, Len: 4 * mm.PageSize, Prot: mm.ProtRead | mm.ProtExec},
			{Addr: 0x8000, Len: 2 * mm.PageSize, Prot: mm.ProtRead | mm.ProtWrite},
		},
	})
	r.Register("spin", Image{
		Entry: 0x2000,
		Segments: []Segment{
			{Addr: 0x2000, Len: mm.PageSize, Prot: mm.ProtRead | mm.ProtExec},
		},
	})
	return r
}
