//go:build linux

package network

import (
	"fmt"
	"time"
)

// pingArgs builds arguments for the Linux iputils ping: one echo request
// with a whole-second reply deadline.
func pingArgs(host string, timeout time.Duration) []string {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-W", fmt.Sprintf("%d", secs), host}
}
