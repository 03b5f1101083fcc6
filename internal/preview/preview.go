// Package preview mirrors published frames to a UDP listener so an
// animation can be watched from a development host.
package preview

import (
	"fmt"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"rgbw-ng/internal/animator"
	"rgbw-ng/internal/rgbw"
)

var nowFn = time.Now

// Hex renders the R, G, B duty of d as #rrggbb. W is not represented.
func Hex(d rgbw.Duty) string {
	c := colorful.Color{
		R: float64(d.R) / 255,
		G: float64(d.G) / 255,
		B: float64(d.B) / 255,
	}
	return c.Hex()
}

// Encode renders one frame as a single ASCII line.
func Encode(f animator.Frame) []byte {
	return []byte(fmt.Sprintf("hue=%d sat=%d val=%d rgbw=%s hex=%s",
		f.Hue, f.Sat, f.Val, f.Duty, Hex(f.Duty)))
}

// sender is satisfied by *udp.Broadcaster.
type sender interface {
	Send(payload []byte) error
	Close() error
}

// Mirror sends at most one frame per MinInterval.
type Mirror struct {
	out         sender
	minInterval time.Duration

	mu     sync.Mutex
	lastAt time.Time
	sent   uint64
}

func NewMirror(out sender, minInterval time.Duration) *Mirror {
	return &Mirror{out: out, minInterval: minInterval}
}

// Observe is an animator.Observer.
func (m *Mirror) Observe(f animator.Frame) error {
	now := nowFn()
	m.mu.Lock()
	if !m.lastAt.IsZero() && now.Sub(m.lastAt) < m.minInterval {
		m.mu.Unlock()
		return nil
	}
	m.lastAt = now
	m.sent++
	m.mu.Unlock()

	if err := m.out.Send(Encode(f)); err != nil {
		return fmt.Errorf("preview: send: %w", err)
	}
	return nil
}

// Sent returns how many frames have been handed to the sender.
func (m *Mirror) Sent() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *Mirror) Close() error {
	return m.out.Close()
}
