// Package network probes configured endpoints for ICMP, TCP, and HTTP(S)
// reachability.
package network

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opsgate/preflight/internal/types"
)

// maxConcurrentEndpoints bounds the probe fan-out within the category.
const maxConcurrentEndpoints = 4

// Validator runs reachability probes against configured endpoints.
// Each probe is bounded by the endpoint timeout and produces exactly one
// result; a probe is never retried.
type Validator struct {
	endpoints []types.Endpoint
	log       *zap.Logger

	// ping issues a single ICMP echo request. Injectable for tests.
	ping PingFunc

	// dial opens a TCP connection. Injectable for tests.
	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// New creates a network Validator for the given endpoints.
func New(endpoints []types.Endpoint, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		endpoints: endpoints,
		log:       log,
		ping:      systemPing,
		dial:      net.DialTimeout,
	}
}

// Category returns the validator's result category.
func (v *Validator) Category() types.Category { return types.CategoryNetwork }

// Validate probes every configured endpoint. Endpoints are probed
// concurrently with a bounded limit; result order follows the
// configuration list order.
func (v *Validator) Validate(ctx context.Context) []types.ValidationResult {
	slots := make([][]types.ValidationResult, len(v.endpoints))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEndpoints)
	for i, ep := range v.endpoints {
		i, ep := i, ep
		g.Go(func() error {
			slots[i] = v.probeEndpoint(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()

	var results []types.ValidationResult
	for _, slot := range slots {
		results = append(results, slot...)
	}
	return results
}

// probeEndpoint runs the applicable probes for one endpoint:
// ICMP and TCP always, HTTP(S) only for http/https protocols.
func (v *Validator) probeEndpoint(ctx context.Context, ep types.Endpoint) []types.ValidationResult {
	v.log.Debug("probing endpoint", zap.String("name", ep.Name), zap.String("host", ep.Host))

	results := []types.ValidationResult{
		v.icmpProbe(ctx, ep),
		v.tcpProbe(ep),
	}

	proto := strings.ToLower(ep.Protocol)
	if proto == "http" || proto == "https" {
		results = append(results, v.httpProbe(ctx, ep))
	}
	return results
}

// icmpProbe issues a single echo request. A spawn or timeout error is a
// failed probe, identical to no reply. It never aborts the run.
func (v *Validator) icmpProbe(ctx context.Context, ep types.Endpoint) types.ValidationResult {
	name := "icmp_ping_" + ep.Name
	start := time.Now()
	err := v.ping(ctx, ep.Host, ep.Timeout())
	elapsed := time.Since(start)

	details := map[string]any{
		"host":             ep.Host,
		"response_time_ms": elapsed.Milliseconds(),
	}

	if err != nil {
		details["error"] = err.Error()
		return types.NewResult(types.CategoryNetwork, name, types.StatusFail, elapsed,
			fmt.Sprintf("No ICMP reply from %s within %s.", ep.Host, ep.Timeout())).
			WithDetails(details).
			WithRemediation(fmt.Sprintf("Verify routing and firewall rules allow ICMP echo to %s.", ep.Host))
	}

	return types.NewResult(types.CategoryNetwork, name, types.StatusPass, elapsed,
		fmt.Sprintf("ICMP echo to %s replied in %dms.", ep.Host, elapsed.Milliseconds())).
		WithDetails(details)
}

// tcpProbe opens a socket to host:port within the endpoint timeout.
func (v *Validator) tcpProbe(ep types.Endpoint) types.ValidationResult {
	name := "tcp_connection_" + ep.Name
	addr := net.JoinHostPort(ep.Host, fmt.Sprintf("%d", ep.Port))
	start := time.Now()
	conn, err := v.dial("tcp", addr, ep.Timeout())
	elapsed := time.Since(start)

	details := map[string]any{
		"host": ep.Host,
		"port": ep.Port,
	}

	if err != nil {
		details["error"] = err.Error()
		return types.NewResult(types.CategoryNetwork, name, types.StatusFail, elapsed,
			fmt.Sprintf("TCP connection to %s failed.", addr)).
			WithDetails(details).
			WithRemediation(fmt.Sprintf("Confirm a listener is bound on %s and no firewall blocks the port.", addr))
	}
	_ = conn.Close()

	details["response_time_ms"] = elapsed.Milliseconds()
	return types.NewResult(types.CategoryNetwork, name, types.StatusPass, elapsed,
		fmt.Sprintf("TCP connection to %s succeeded in %dms.", addr, elapsed.Milliseconds())).
		WithDetails(details)
}
