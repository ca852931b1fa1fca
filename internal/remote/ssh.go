package remote

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/opsgate/preflight/internal/types"
)

// defaultSSHPort is used when a target does not configure a port.
const defaultSSHPort = 22

// SSHExecutor runs commands over SSH with password authentication.
//
// Host keys are intentionally not verified: this is a reachability and
// credential probe run before any trust relationship exists, not a secure
// channel for real payloads.
type SSHExecutor struct{}

// Run dials the target, opens a session, and returns the command's stdout.
// The dial and the session are both bounded by ctx.
func (e *SSHExecutor) Run(ctx context.Context, target types.RemoteTarget, command string) (string, error) {
	port := target.Port
	if port <= 0 {
		port = defaultSSHPort
	}
	addr := net.JoinHostPort(target.Host, fmt.Sprintf("%d", port))

	cfg := &ssh.ClientConfig{
		User:            target.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(target.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         target.Timeout(),
	}

	dialer := &net.Dialer{Timeout: target.Timeout()}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}

	// cfg.Timeout only bounds the TCP connect inside ssh.Dial; the
	// handshake itself must be bounded by a connection deadline, or a
	// host that accepts TCP and never speaks SSH hangs the check.
	deadline := time.Now().Add(target.Timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = netConn.SetDeadline(deadline)

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		_ = netConn.Close()
		return "", fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	_ = netConn.SetDeadline(time.Time{})
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session on %s: %w", addr, err)
	}
	defer session.Close()

	// Close the connection when ctx expires so a hung remote shell cannot
	// outlive the check timeout.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()

	out, err := session.Output(command)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("remote command on %s timed out: %w", addr, ctx.Err())
		}
		return "", fmt.Errorf("remote command on %s: %w", addr, err)
	}
	return string(out), nil
}
