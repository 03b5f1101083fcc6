package animator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rgbw-ng/internal/hsv"
	"rgbw-ng/internal/rgbw"
)

type recordingPublisher struct {
	got []rgbw.Duty
}

func (p *recordingPublisher) Publish(d rgbw.Duty) { p.got = append(p.got, d) }

func TestStep_WrapsAfterFullCircle(t *testing.T) {
	store := &rgbw.AtomicStore{}
	a := New(Config{Step: 5, Saturation: 200, Value: 255}, hsv.Converter{}, store)

	var f Frame
	for i := 0; i < 307; i++ {
		f = a.Step(0)
	}
	require.Equal(t, hsv.Angle(1535), f.Hue)
	require.Equal(t, rgbw.Duty{R: 255, G: 9, B: 9, W: 9}, f.Duty)
	require.Equal(t, hsv.Convert(0, 200, 255), f.Duty)
	require.Equal(t, f.Duty, store.Load())

	f = a.Step(0)
	require.Equal(t, hsv.Angle(4), f.Hue)

	last, n := a.Last()
	require.Equal(t, f, last)
	require.Equal(t, uint64(308), n)
}

func TestStep_PublishesEveryIteration(t *testing.T) {
	pub := &recordingPublisher{}
	a := New(Config{StartHue: 250, Step: 6, Saturation: 255, Value: 255}, hsv.Converter{}, pub)

	a.Step(0)
	a.Step(0)
	require.Equal(t, []rgbw.Duty{hsv.Convert(256, 255, 255), hsv.Convert(262, 255, 255)}, pub.got)
}

type rampLevels struct{}

func (rampLevels) LevelsAt(elapsed time.Duration) (uint8, uint8) {
	return 255, uint8(elapsed / time.Second)
}

func TestStep_UsesLevelSource(t *testing.T) {
	a := New(Config{Step: 0}, hsv.Converter{}, &rgbw.AtomicStore{}, WithLevels(rampLevels{}))

	f := a.Step(0)
	require.Equal(t, rgbw.Duty{}, f.Duty)

	f = a.Step(128 * time.Second)
	require.Equal(t, uint8(128), f.Val)
	require.Equal(t, hsv.Convert(0, 255, 128), f.Duty)
}

func TestStep_ObserverErrorDoesNotStop(t *testing.T) {
	var calls int
	a := New(Config{Step: 1, Saturation: 10, Value: 10}, hsv.Converter{}, &rgbw.AtomicStore{},
		WithObserver(func(Frame) error {
			calls++
			return errors.New("unreachable host")
		}),
		WithObserver(func(Frame) error {
			calls++
			return nil
		}),
	)
	a.Step(0)
	a.Step(0)
	require.Equal(t, 4, calls)
}

func TestRun_StepsUntilCanceled(t *testing.T) {
	ch := make(chan time.Time)
	oldTicker := newTickerFn
	newTickerFn = func(d time.Duration) *time.Ticker {
		tk := time.NewTicker(time.Hour)
		tk.C = ch
		return tk
	}
	t.Cleanup(func() { newTickerFn = oldTicker })

	store := &rgbw.AtomicStore{}
	a := New(Config{Step: 5, Saturation: 200, Value: 255}, hsv.Converter{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case ch <- time.Time{}:
		case <-time.After(time.Second):
			t.Fatalf("tick %d not consumed", i)
		}
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	f, n := a.Last()
	require.Equal(t, uint64(4), n)
	require.Equal(t, hsv.Angle(20), f.Hue)
	require.Equal(t, f.Duty, store.Load())
}

func TestNew_DefaultInterval(t *testing.T) {
	a := New(Config{}, hsv.Converter{}, &rgbw.AtomicStore{})
	require.Equal(t, 5*time.Millisecond, a.cfg.Interval)
}
