//go:build !windows

package probe

import (
	"strconv"
	"time"
)

// pingArgs builds POSIX ping arguments: one packet, wait bounded in whole
// seconds (minimum 1).
func pingArgs(host string, timeout time.Duration) []string {
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return []string{"-c", "1", "-W", strconv.Itoa(seconds), host}
}
