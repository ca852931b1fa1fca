//go:build darwin

package network

import (
	"fmt"
	"time"
)

// pingArgs builds arguments for the BSD ping shipped with macOS: one echo
// request with a whole-second overall deadline.
func pingArgs(host string, timeout time.Duration) []string {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-t", fmt.Sprintf("%d", secs), host}
}
