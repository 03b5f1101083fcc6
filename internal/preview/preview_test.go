package preview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rgbw-ng/internal/animator"
	"rgbw-ng/internal/rgbw"
)

type fakeSender struct {
	payloads [][]byte
	err      error
	closed   bool
}

func (s *fakeSender) Send(p []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, append([]byte(nil), p...))
	return nil
}

func (s *fakeSender) Close() error {
	s.closed = true
	return nil
}

func TestHex(t *testing.T) {
	require.Equal(t, "#ff0000", Hex(rgbw.Duty{R: 255, W: 99}))
	require.Equal(t, "#000000", Hex(rgbw.Duty{}))
	require.Equal(t, "#ff0909", Hex(rgbw.Duty{R: 255, G: 9, B: 9, W: 9}))
}

func TestEncode(t *testing.T) {
	f := animator.Frame{Hue: 1535, Sat: 200, Val: 255, Duty: rgbw.Duty{R: 255, G: 9, B: 9, W: 9}}
	require.Equal(t, "hue=1535 sat=200 val=255 rgbw=255,9,9,9 hex=#ff0909", string(Encode(f)))
}

func TestMirror_RateLimits(t *testing.T) {
	clock := time.Unix(100, 0)
	old := nowFn
	nowFn = func() time.Time { return clock }
	t.Cleanup(func() { nowFn = old })

	out := &fakeSender{}
	m := NewMirror(out, 100*time.Millisecond)

	require.NoError(t, m.Observe(animator.Frame{Hue: 1}))
	clock = clock.Add(50 * time.Millisecond)
	require.NoError(t, m.Observe(animator.Frame{Hue: 2}))
	clock = clock.Add(50 * time.Millisecond)
	require.NoError(t, m.Observe(animator.Frame{Hue: 3}))

	require.Len(t, out.payloads, 2)
	require.Contains(t, string(out.payloads[0]), "hue=1 ")
	require.Contains(t, string(out.payloads[1]), "hue=3 ")
	require.Equal(t, uint64(2), m.Sent())

	require.NoError(t, m.Close())
	require.True(t, out.closed)
}

func TestMirror_WrapsSendError(t *testing.T) {
	wantErr := errors.New("connection refused")
	m := NewMirror(&fakeSender{err: wantErr}, 0)
	err := m.Observe(animator.Frame{})
	require.ErrorIs(t, err, wantErr)
	require.EqualError(t, err, "preview: send: connection refused")
}
