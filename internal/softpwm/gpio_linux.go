//go:build linux

package softpwm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openGPIO requests the four named lines as outputs on a single GPIO
// character device. Lines start low.
func openGPIO(cfg SinkConfig) (Sink, error) {
	for i, name := range cfg.Lines {
		if name == "" {
			return nil, fmt.Errorf("softpwm: gpio line for channel %d is not set", i)
		}
	}

	chipCandidates := []string{}
	if cfg.Chip != "" {
		chipCandidates = append(chipCandidates, cfg.Chip)
	} else {
		entries, _ := os.ReadDir("/dev")
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, "gpiochip") {
				chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
			}
		}
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsOutput(0, 0, 0, 0),
		gpiocdev.WithConsumer("rgbw-ng"),
	}
	if cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	var lastErr error
	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			lastErr = err
			continue
		}
		offsets, err := findLines(chip, cfg.Lines)
		if err != nil {
			_ = chip.Close()
			lastErr = err
			continue
		}
		lines, err := chip.RequestLines(offsets, opts...)
		if err != nil {
			_ = chip.Close()
			lastErr = err
			continue
		}
		return &gpiodSink{chip: chip, lines: lines, values: make([]int, 4)}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("softpwm: gpio lines %q not available: %w", cfg.Lines, lastErr)
	}
	return nil, fmt.Errorf("softpwm: no gpio chips found")
}

func findLines(chip *gpiocdev.Chip, names [4]string) ([]int, error) {
	offsets := make([]int, 0, len(names))
	for _, name := range names {
		offset, err := chip.FindLine(name)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", name, err)
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

var openGPIOFn = openGPIO

type gpiodSink struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	values []int
}

func (g *gpiodSink) Write(lv Levels) error {
	if g == nil || g.lines == nil {
		return fmt.Errorf("softpwm: gpio sink not initialized")
	}
	for i := range g.values {
		g.values[i] = int(lv>>uint(i)) & 1
	}
	return g.lines.SetValues(g.values)
}

func (g *gpiodSink) Close() error {
	if g == nil || g.lines == nil {
		return nil
	}
	_ = g.lines.SetValues([]int{0, 0, 0, 0})
	err := g.lines.Close()
	g.lines = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
