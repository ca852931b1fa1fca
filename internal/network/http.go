package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/opsgate/preflight/internal/types"
)

// httpTransport skips TLS verification: this probe answers "is something
// reachable and speaking HTTP there", not "is the certificate trustworthy".
// Do not reuse it for certificate-trust decisions.
var httpTransport = &http.Transport{
	TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
}

// httpProbe issues a GET to the endpoint root. Status < 400 passes,
// >= 400 warns (reachable but erroring), transport errors fail.
func (v *Validator) httpProbe(ctx context.Context, ep types.Endpoint) types.ValidationResult {
	name := "http_response_" + ep.Name
	url := fmt.Sprintf("%s://%s:%d/", ep.Protocol, ep.Host, ep.Port)

	client := &http.Client{
		Timeout:   ep.Timeout(),
		Transport: httpTransport,
	}

	details := map[string]any{"url": url}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		details["error"] = err.Error()
		return types.NewResult(types.CategoryNetwork, name, types.StatusFail, time.Since(start),
			fmt.Sprintf("Could not build HTTP request for %s.", url)).
			WithDetails(details).
			WithRemediation("Check the endpoint host and protocol configuration.")
	}

	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		details["error"] = err.Error()
		return types.NewResult(types.CategoryNetwork, name, types.StatusFail, elapsed,
			fmt.Sprintf("HTTP request to %s failed.", url)).
			WithDetails(details).
			WithRemediation(fmt.Sprintf("Confirm the web service behind %s is up and reachable.", url))
	}
	defer resp.Body.Close()

	details["status_code"] = resp.StatusCode
	details["response_time_ms"] = elapsed.Milliseconds()

	if resp.StatusCode >= 400 {
		return types.NewResult(types.CategoryNetwork, name, types.StatusWarn, elapsed,
			fmt.Sprintf("%s is reachable but returned HTTP %d.", url, resp.StatusCode)).
			WithDetails(details).
			WithRemediation(fmt.Sprintf("Investigate why %s returns HTTP %d.", url, resp.StatusCode))
	}

	return types.NewResult(types.CategoryNetwork, name, types.StatusPass, elapsed,
		fmt.Sprintf("%s responded with HTTP %d in %dms.", url, resp.StatusCode, elapsed.Milliseconds())).
		WithDetails(details)
}
