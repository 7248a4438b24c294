//go:build windows

package probe

import (
	"strconv"
	"time"
)

// pingArgs builds Windows ping arguments: one packet, wait in milliseconds.
func pingArgs(host string, timeout time.Duration) []string {
	millis := int(timeout / time.Millisecond)
	if millis < 1 {
		millis = 1000
	}

	return []string{"-n", "1", "-w", strconv.Itoa(millis), host}
}
