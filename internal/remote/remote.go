// Package remote validates remote command execution against configured hosts.
//
// The remote-management channel is abstracted behind the RemoteExecutor
// interface so the validator stays testable with fakes; the shipped
// implementation runs commands over SSH.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/types"
)

// echoMarker is the literal the remote shell must echo back. Requiring the
// marker in stdout guards against environments where the remote shell
// silently no-ops but still exits zero.
const echoMarker = "preflight_connection_ok"

// RemoteExecutor runs a command on a remote host and returns its stdout.
type RemoteExecutor interface {
	// Run executes command on the target and returns captured stdout.
	// A non-zero remote exit status is an error.
	Run(ctx context.Context, target types.RemoteTarget, command string) (string, error)
}

// Validator verifies remote administration reachability and credentials by
// executing a trivial echo on each configured host.
type Validator struct {
	targets  []types.RemoteTarget
	executor RemoteExecutor
	log      *zap.Logger
}

// New creates a remote session Validator. A nil executor selects the SSH
// implementation.
func New(targets []types.RemoteTarget, executor RemoteExecutor, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	if executor == nil {
		executor = &SSHExecutor{}
	}
	return &Validator{targets: targets, executor: executor, log: log}
}

// Category returns the validator's result category.
func (v *Validator) Category() types.Category { return types.CategoryRemote }

// Validate checks every configured target in order.
func (v *Validator) Validate(ctx context.Context) []types.ValidationResult {
	results := make([]types.ValidationResult, 0, len(v.targets))
	for _, target := range v.targets {
		results = append(results, v.check(ctx, target))
	}
	return results
}

// check executes the echo command on one target and verifies the marker.
// Credentials never appear in details or logs.
func (v *Validator) check(ctx context.Context, target types.RemoteTarget) types.ValidationResult {
	name := "remote_session_" + sanitizeHost(target.Host)
	details := map[string]any{"host": target.Host}
	remediation := fmt.Sprintf(
		"Verify the remote management service on %s is running, the credentials are valid, and no firewall blocks the connection.",
		target.Host)

	v.log.Debug("verifying remote session", zap.String("host", target.Host))

	ctx, cancel := context.WithTimeout(ctx, target.Timeout())
	defer cancel()

	start := time.Now()
	stdout, err := v.executor.Run(ctx, target, "echo "+echoMarker)
	elapsed := time.Since(start)

	if err != nil {
		details["error"] = err.Error()
		return types.NewResult(types.CategoryRemote, name, types.StatusFail, elapsed,
			fmt.Sprintf("Remote command execution on %s failed.", target.Host)).
			WithDetails(details).
			WithRemediation(remediation)
	}

	if !strings.Contains(stdout, echoMarker) {
		details["stdout"] = truncate(stdout, 200)
		return types.NewResult(types.CategoryRemote, name, types.StatusFail, elapsed,
			fmt.Sprintf("Remote shell on %s did not echo the expected marker.", target.Host)).
			WithDetails(details).
			WithRemediation(remediation)
	}

	details["response_time_ms"] = elapsed.Milliseconds()
	return types.NewResult(types.CategoryRemote, name, types.StatusPass, elapsed,
		fmt.Sprintf("Remote command execution on %s verified in %dms.", target.Host, elapsed.Milliseconds())).
		WithDetails(details)
}

// sanitizeHost turns a hostname into a check-name fragment.
func sanitizeHost(host string) string {
	return strings.NewReplacer(".", "_", ":", "_", "-", "_").Replace(host)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
