package network

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// PingFunc issues a single ICMP echo request and returns nil when a reply
// arrives within the timeout.
type PingFunc func(ctx context.Context, host string, timeout time.Duration) error

// systemPing shells out to the platform ping binary. Raw ICMP sockets need
// elevated privileges; the setuid system binary works as any user.
func systemPing(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", pingArgs(host, timeout)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ping %s: %w", host, err)
	}
	return nil
}
