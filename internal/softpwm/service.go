package softpwm

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"rgbw-ng/internal/rgbw"
)

// ticker is the subset of *time.Ticker the tick loop needs.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop() { t.t.Stop() }

var newTickerFn = func(d time.Duration) ticker { return timeTicker{time.NewTicker(d)} }
var lockMemoryFn = lockMemory
var nowFn = time.Now

type Config struct {
	// TickHz is the tick rate. The visible PWM frequency is TickHz/256.
	TickHz int
	// LockMemory calls mlockall before ticking starts.
	LockMemory bool
}

// Period is the duration of one tick.
func (c Config) Period() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

type Snapshot struct {
	Running bool `json:"running"`

	TickHz      int    `json:"tick_hz"`
	Ticks       uint64 `json:"ticks"`
	Writes      uint64 `json:"writes"`
	WriteErrors uint64 `json:"write_errors"`
	Overruns    uint64 `json:"overruns"`

	Counter  uint8     `json:"counter"`
	Realized rgbw.Duty `json:"realized"`
	Periods  uint64    `json:"periods"`

	LastError string `json:"last_error,omitempty"`
}

// Service drives a Generator from a fixed-rate ticker and writes the
// resulting levels to a Sink.
type Service struct {
	cfg   Config
	gen   *Generator
	sink  Sink
	meter Meter

	running     atomic.Bool
	ticks       atomic.Uint64
	writes      atomic.Uint64
	writeErrors atomic.Uint64
	overruns    atomic.Uint64
	counter     atomic.Uint32

	mu      sync.Mutex
	lastErr string

	wg sync.WaitGroup

	stopOnce  sync.Once
	closeOnce sync.Once
	stopCh    chan struct{}
}

func New(cfg Config, src rgbw.Source, sink Sink) *Service {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 25600
	}
	return &Service{
		cfg:    cfg,
		gen:    NewGenerator(src),
		sink:   sink,
		stopCh: make(chan struct{}),
	}
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()
	return Snapshot{
		Running:     s.running.Load(),
		TickHz:      s.cfg.TickHz,
		Ticks:       s.ticks.Load(),
		Writes:      s.writes.Load(),
		WriteErrors: s.writeErrors.Load(),
		Overruns:    s.overruns.Load(),
		Counter:     uint8(s.counter.Load()),
		Realized:    s.meter.Realized(),
		Periods:     s.meter.Periods(),
		LastError:   lastErr,
	}
}

func (s *Service) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

// Start begins ticking on a dedicated goroutine and returns immediately.
// Ticking stops when ctx is canceled or Close is called.
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("softpwm: service is nil")
	}
	if s.sink == nil {
		return fmt.Errorf("softpwm: no output sink")
	}

	if s.cfg.LockMemory {
		if err := lockMemoryFn(); err != nil {
			// Ticking still works unlocked, only with more jitter.
			s.setErr(err.Error())
		}
	}

	// Outputs start low regardless of what the sink was left at.
	if err := s.sink.Write(AllLow); err != nil {
		s.setErr(fmt.Sprintf("softpwm: initial write failed: %v", err))
		return err
	}

	s.running.Store(true)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.run(ctx)
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.stopCh:
		}
	}()
	return nil
}

func (s *Service) run(ctx context.Context) {
	// Keep the tick handler on one OS thread, like an interrupt vector.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	period := s.cfg.Period()
	t := newTickerFn(period)
	defer t.Stop()

	last := AllLow
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-t.C():
			start := nowFn()
			lv := s.gen.Tick()
			s.ticks.Add(1)
			s.counter.Store(uint32(s.gen.Counter()))
			s.meter.Observe(lv)
			if lv != last {
				if err := s.sink.Write(lv); err != nil {
					s.writeErrors.Add(1)
					s.setErr(fmt.Sprintf("softpwm: write failed: %v", err))
				} else {
					s.writes.Add(1)
					last = lv
				}
			}
			if nowFn().Sub(start) > period {
				s.overruns.Add(1)
			}
		}
	}
}

// Close stops ticking, drives every output low and releases the sink.
// It is safe to call more than once.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	// The sink must not be written concurrently with the tick loop.
	s.wg.Wait()

	s.closeOnce.Do(func() {
		if s.sink == nil {
			return
		}
		_ = s.sink.Write(AllLow)
		if err := s.sink.Close(); err != nil {
			s.setErr(fmt.Sprintf("softpwm: close failed: %v", err))
		}
	})
}
