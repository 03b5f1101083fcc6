package softpwm

import "fmt"

// Sink latches levels onto physical outputs.
//
// Write is called from the tick goroutine and must not block for longer
// than a tick. Close should leave every output low.
type Sink interface {
	Write(Levels) error
	Close() error
}

const (
	BackendGPIO = "gpio"
	BackendNull = "null"
)

// SinkConfig selects and configures an output backend.
type SinkConfig struct {
	Backend string
	// Chip is a GPIO character device name or path, e.g. "gpiochip0".
	// Empty searches every chip for the line names.
	Chip string
	// Lines are GPIO line names in R, G, B, W order, e.g. "GPIO17".
	Lines [4]string
	// ActiveLow inverts the electrical level of every line.
	ActiveLow bool
}

// OpenSink opens the configured backend.
func OpenSink(cfg SinkConfig) (Sink, error) {
	switch cfg.Backend {
	case BackendGPIO:
		return openGPIOFn(cfg)
	case "", BackendNull:
		return nullSink{}, nil
	default:
		return nil, fmt.Errorf("softpwm: unknown output backend %q", cfg.Backend)
	}
}

type nullSink struct{}

func (nullSink) Write(Levels) error { return nil }
func (nullSink) Close() error { return nil }
