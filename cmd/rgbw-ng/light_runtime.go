package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"rgbw-ng/internal/animator"
	"rgbw-ng/internal/config"
	"rgbw-ng/internal/hsv"
	"rgbw-ng/internal/levels"
	"rgbw-ng/internal/preview"
	"rgbw-ng/internal/rgbw"
	"rgbw-ng/internal/softpwm"
	"rgbw-ng/internal/udp"
)

var openSinkFn = softpwm.OpenSink
var newBroadcasterFn = udp.NewBroadcaster

// lightRuntime owns every long-lived component: the duty store shared by
// the animator and the PWM tick loop, the output sink and the optional
// preview mirror.
type lightRuntime struct {
	cfg config.Config

	store  rgbw.Store
	pwm    *softpwm.Service
	anim   *animator.Animator
	mirror *preview.Mirror
}

func newLightRuntime(cfg config.Config) (*lightRuntime, error) {
	edge, err := hsv.ParseEdgePolicy(cfg.Converter.EdgePolicy)
	if err != nil {
		return nil, err
	}
	store, err := rgbw.NewStore(cfg.PWM.Publish)
	if err != nil {
		return nil, err
	}

	var opts []animator.Option
	if cfg.Levels.Script != "" {
		f, err := levels.Load(cfg.Levels.Script)
		if err != nil {
			return nil, fmt.Errorf("levels script load: %w", err)
		}
		script, err := levels.New(f)
		if err != nil {
			return nil, fmt.Errorf("levels script %s: %w", cfg.Levels.Script, err)
		}
		opts = append(opts, animator.WithLevels(script))
		log.Printf("levels script=%s duration=%s", cfg.Levels.Script, script.Duration())
	}

	r := &lightRuntime{cfg: cfg, store: store}

	if cfg.Preview.Enable {
		b, err := newBroadcasterFn(cfg.Preview.Dest)
		if err != nil {
			return nil, fmt.Errorf("preview init: %w", err)
		}
		r.mirror = preview.NewMirror(b, cfg.Preview.MinInterval)
		opts = append(opts, animator.WithObserver(r.mirror.Observe))
		log.Printf("preview dest=%s min_interval=%s", cfg.Preview.Dest, cfg.Preview.MinInterval)
	}

	sink, err := openSinkFn(softpwm.SinkConfig{
		Backend:   cfg.Output.Backend,
		Chip:      cfg.Output.Chip,
		Lines:     [4]string{cfg.Output.Lines.R, cfg.Output.Lines.G, cfg.Output.Lines.B, cfg.Output.Lines.W},
		ActiveLow: cfg.Output.ActiveLow,
	})
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("output init: %w", err)
	}
	r.pwm = softpwm.New(softpwm.Config{TickHz: cfg.PWM.TickHz, LockMemory: cfg.PWM.LockMemory}, store, sink)

	r.anim = animator.New(animator.Config{
		StartHue:   hsv.Angle(cfg.Animator.StartHue),
		Step:       cfg.Animator.Step,
		Interval:   cfg.Animator.Interval,
		Saturation: uint8(cfg.Animator.Saturation),
		Value:      uint8(cfg.Animator.Value),
	}, hsv.Converter{Edge: edge}, store, opts...)

	return r, nil
}

// Run starts ticking and animating and blocks until ctx is canceled.
func (r *lightRuntime) Run(ctx context.Context) error {
	if err := r.pwm.Start(ctx); err != nil {
		return fmt.Errorf("pwm start: %w", err)
	}
	if msg := r.pwm.Snapshot().LastError; msg != "" {
		log.Printf("pwm warning: %s", msg)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.anim.Run(ctx) })
	if r.cfg.Log.StatusInterval > 0 {
		g.Go(func() error { return r.logStatus(ctx, r.cfg.Log.StatusInterval) })
	}
	err := g.Wait()
	r.pwm.Close()
	return err
}

func (r *lightRuntime) logStatus(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			log.Print(r.statusLine())
		}
	}
}

func (r *lightRuntime) statusLine() string {
	f, n := r.anim.Last()
	snap := r.pwm.Snapshot()
	line := fmt.Sprintf("status steps=%d hue=%d sat=%d val=%d duty=%s hex=%s ticks=%d writes=%d overruns=%d realized=%s",
		n, f.Hue, f.Sat, f.Val, f.Duty, preview.Hex(f.Duty), snap.Ticks, snap.Writes, snap.Overruns, snap.Realized)
	if snap.LastError != "" {
		line += fmt.Sprintf(" write_errors=%d last_error=%q", snap.WriteErrors, snap.LastError)
	}
	if r.mirror != nil {
		line += fmt.Sprintf(" preview_sent=%d", r.mirror.Sent())
	}
	return line
}

// Close releases the sink and the preview socket. Safe after Run.
func (r *lightRuntime) Close() {
	if r == nil {
		return
	}
	if r.pwm != nil {
		r.pwm.Close()
	}
	if r.mirror != nil {
		_ = r.mirror.Close()
		r.mirror = nil
	}
}
