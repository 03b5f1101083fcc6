//go:build !linux

package softpwm

import "fmt"

// Stub implementation for non-Linux platforms.
func openGPIO(cfg SinkConfig) (Sink, error) {
	return nil, fmt.Errorf("softpwm: gpio unsupported on this platform")
}

var openGPIOFn = openGPIO
