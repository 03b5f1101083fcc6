//go:build !linux

package softpwm

import "fmt"

func lockMemory() error {
	return fmt.Errorf("softpwm: memory locking unsupported on this platform")
}
