//go:build linux

package softpwm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// lockMemory pins the process's pages so the tick goroutine never stalls on
// a page fault.
func lockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("softpwm: mlockall: %w", err)
	}
	return nil
}
