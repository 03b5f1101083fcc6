// Package animator advances the hue at a fixed cadence, converts it to
// duty cycles and publishes them for the PWM tick handler.
package animator

import (
	"context"
	"log"
	"sync"
	"time"

	"rgbw-ng/internal/hsv"
	"rgbw-ng/internal/rgbw"
)

var newTickerFn = time.NewTicker
var nowFn = time.Now

type Config struct {
	StartHue hsv.Angle
	// Step is added to the hue every iteration; it may be negative.
	Step       int
	Interval   time.Duration
	Saturation uint8
	Value      uint8
}

// LevelSource supplies saturation and value for each iteration.
type LevelSource interface {
	LevelsAt(elapsed time.Duration) (sat, val uint8)
}

// Constant holds saturation and value fixed.
type Constant struct {
	Saturation uint8
	Value      uint8
}

func (c Constant) LevelsAt(time.Duration) (uint8, uint8) { return c.Saturation, c.Value }

// Frame is the result of one iteration.
type Frame struct {
	Hue  hsv.Angle
	Sat  uint8
	Val  uint8
	Duty rgbw.Duty
}

// Observer is called after every publish. Errors are logged.
type Observer func(Frame) error

type Option func(*Animator)

// WithLevels replaces the constant saturation/value.
func WithLevels(src LevelSource) Option {
	return func(a *Animator) { a.levels = src }
}

// WithObserver adds a post-publish hook.
func WithObserver(o Observer) Option {
	return func(a *Animator) { a.observers = append(a.observers, o) }
}

// Animator is the only writer of the published duty.
type Animator struct {
	cfg       Config
	conv      hsv.Converter
	pub       rgbw.Publisher
	levels    LevelSource
	observers []Observer

	hue hsv.Angle

	mu   sync.RWMutex
	last Frame
	n    uint64
}

func New(cfg Config, conv hsv.Converter, pub rgbw.Publisher, opts ...Option) *Animator {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Millisecond
	}
	a := &Animator{
		cfg:    cfg,
		conv:   conv,
		pub:    pub,
		levels: Constant{Saturation: cfg.Saturation, Value: cfg.Value},
		hue:    cfg.StartHue,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Step runs one iteration: advance the hue, convert, publish.
func (a *Animator) Step(elapsed time.Duration) Frame {
	a.hue = a.hue.Add(a.cfg.Step)
	sat, val := a.levels.LevelsAt(elapsed)
	f := Frame{
		Hue:  a.hue,
		Sat:  sat,
		Val:  val,
		Duty: a.conv.Convert(a.hue, sat, val),
	}
	a.pub.Publish(f.Duty)

	a.mu.Lock()
	a.last = f
	a.n++
	a.mu.Unlock()

	for _, o := range a.observers {
		if err := o(f); err != nil {
			log.Printf("animator observer error: %v", err)
		}
	}
	return f
}

// Last returns the most recent frame and the number of iterations so far.
func (a *Animator) Last() (Frame, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.n
}

// Run steps once immediately and then every Interval until ctx is done.
// Step and Run must not be called concurrently.
func (a *Animator) Run(ctx context.Context) error {
	start := nowFn()
	a.Step(0)

	t := newTickerFn(a.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			a.Step(nowFn().Sub(start))
		}
	}
}
