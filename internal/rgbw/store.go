package rgbw

import (
	"fmt"
	"sync/atomic"
)

// Publisher is the writer side of the duty handoff. Only the animator writes.
type Publisher interface {
	Publish(Duty)
}

// Source is the reader side, used from the tick handler. Load must not block.
type Source interface {
	Load() Duty
}

// Store is both sides of the handoff.
type Store interface {
	Publisher
	Source
}

const (
	ModeAtomic = "atomic"
	ModeFields = "fields"
)

// NewStore returns the store for mode. An empty mode selects ModeAtomic.
func NewStore(mode string) (Store, error) {
	switch mode {
	case "", ModeAtomic:
		return &AtomicStore{}, nil
	case ModeFields:
		return &FieldStore{}, nil
	default:
		return nil, fmt.Errorf("rgbw: unknown publish mode %q", mode)
	}
}

// AtomicStore publishes all four channels with one atomic word store, so a
// reader always sees a Duty exactly as it was published.
type AtomicStore struct {
	v atomic.Uint32
}

func (s *AtomicStore) Publish(d Duty) { s.v.Store(d.Pack()) }

func (s *AtomicStore) Load() Duty { return Unpack(s.v.Load()) }

// FieldStore keeps each channel in its own word and writes them one at a
// time in R, G, B, W order. A concurrent Load may observe some channels from
// the new Duty and the rest from the previous one. It exists to reproduce
// the legacy firmware's per-field publication.
type FieldStore struct {
	r, g, b, w atomic.Uint32
}

func (s *FieldStore) Publish(d Duty) {
	s.r.Store(uint32(d.R))
	s.g.Store(uint32(d.G))
	s.b.Store(uint32(d.B))
	s.w.Store(uint32(d.W))
}

func (s *FieldStore) Load() Duty {
	return Duty{
		R: uint8(s.r.Load()),
		G: uint8(s.g.Load()),
		B: uint8(s.b.Load()),
		W: uint8(s.w.Load()),
	}
}
