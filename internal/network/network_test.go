package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/preflight/internal/types"
)

// freePort reserves and immediately releases a port so probes against it
// hit a closed socket.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func fakePing(err error) PingFunc {
	return func(context.Context, string, time.Duration) error { return err }
}

func TestTCPProbe_OpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ep := types.Endpoint{
		Name: "local_listener",
		Host: "127.0.0.1",
		Port: ln.Addr().(*net.TCPAddr).Port,
	}
	v := New([]types.Endpoint{ep}, nil)

	res := v.tcpProbe(ep)
	assert.Equal(t, types.StatusPass, res.Status)
	assert.Equal(t, "tcp_connection_local_listener", res.CheckName)
	assert.GreaterOrEqual(t, res.DurationMS, int64(0))
	assert.Empty(t, res.Remediation)
}

func TestTCPProbe_ClosedPortFailsWithinTimeout(t *testing.T) {
	ep := types.Endpoint{
		Name:           "closed_backend",
		Host:           "127.0.0.1",
		Port:           freePort(t),
		TimeoutSeconds: 2,
	}
	v := New([]types.Endpoint{ep}, nil)

	start := time.Now()
	res := v.tcpProbe(ep)
	elapsed := time.Since(start)

	assert.Equal(t, types.StatusFail, res.Status)
	assert.NotEmpty(t, res.Remediation)
	assert.Contains(t, res.Details, "error")
	assert.Less(t, elapsed, 3*time.Second, "probe must not hang past its timeout")
}

func TestICMPProbe(t *testing.T) {
	ep := types.Endpoint{Name: "gw", Host: "10.0.0.1", TimeoutSeconds: 1}

	t.Run("reply", func(t *testing.T) {
		v := New([]types.Endpoint{ep}, nil)
		v.ping = fakePing(nil)
		res := v.icmpProbe(context.Background(), ep)
		assert.Equal(t, types.StatusPass, res.Status)
		assert.Contains(t, res.Details, "response_time_ms")
	})

	t.Run("no reply is a failed probe, not a crash", func(t *testing.T) {
		v := New([]types.Endpoint{ep}, nil)
		v.ping = fakePing(errors.New("exit status 1"))
		res := v.icmpProbe(context.Background(), ep)
		assert.Equal(t, types.StatusFail, res.Status)
		assert.Contains(t, res.Remediation, "firewall")
	})
}

func TestHTTPProbe_StatusTiers(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       types.Status
	}{
		{"ok", http.StatusOK, types.StatusPass},
		{"redirect-class still pass", http.StatusNoContent, types.StatusPass},
		{"client error warns", http.StatusNotFound, types.StatusWarn},
		{"server error warns", http.StatusInternalServerError, types.StatusWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			ep := endpointFromURL(t, srv.URL, "app")
			v := New([]types.Endpoint{ep}, nil)
			res := v.httpProbe(context.Background(), ep)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.statusCode, res.Details["status_code"])
		})
	}
}

func TestHTTPProbe_ConnectionRefused(t *testing.T) {
	ep := types.Endpoint{
		Name:           "down_app",
		Host:           "127.0.0.1",
		Port:           freePort(t),
		Protocol:       "http",
		TimeoutSeconds: 2,
	}
	v := New([]types.Endpoint{ep}, nil)
	res := v.httpProbe(context.Background(), ep)
	assert.Equal(t, types.StatusFail, res.Status)
	assert.Contains(t, res.Details, "error")
}

func TestHTTPProbe_SelfSignedTLSIsReachable(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := endpointFromURL(t, srv.URL, "tls_app")
	v := New([]types.Endpoint{ep}, nil)
	res := v.httpProbe(context.Background(), ep)
	assert.Equal(t, types.StatusPass, res.Status, "certificate trust must not gate the reachability probe")
}

func TestValidate_OrderAndProbeSet(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	endpoints := []types.Endpoint{
		{Name: "first", Host: "127.0.0.1", Port: port, TimeoutSeconds: 1},
		{Name: "second", Host: "127.0.0.1", Port: port, Protocol: "http", TimeoutSeconds: 1},
	}
	v := New(endpoints, nil)
	v.ping = fakePing(nil)

	results := v.Validate(context.Background())
	require.Len(t, results, 5, "tcp endpoints get 2 probes, http endpoints get 3")

	var names []string
	for _, r := range results {
		names = append(names, r.CheckName)
		assert.Equal(t, types.CategoryNetwork, r.Category)
	}
	assert.Equal(t, []string{
		"icmp_ping_first", "tcp_connection_first",
		"icmp_ping_second", "tcp_connection_second", "http_response_second",
	}, names, "result order must follow the configuration list")
}

func endpointFromURL(t *testing.T, raw, name string) types.Endpoint {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return types.Endpoint{
		Name:           name,
		Host:           u.Hostname(),
		Port:           port,
		Protocol:       u.Scheme,
		TimeoutSeconds: 2,
	}
}
