// Package service validates OS service state against configured expectations.
//
// The platform service manager is abstracted behind the ServiceQuery
// interface so orchestration and aggregation stay platform-neutral and
// testable with fakes. The systemd implementation is selected by build tag.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/types"
)

// ErrNotFound is returned by a ServiceQuery when the named service is not
// known to the service manager.
var ErrNotFound = errors.New("service not found")

// ServiceStatus is the live state of one service as reported by the
// service manager.
type ServiceStatus struct {
	// DisplayName is the resolved human-readable name.
	DisplayName string

	// State is the live run state, normalized to lowercase
	// (e.g. "running", "stopped").
	State string

	// StartMode is the boot/startup policy (e.g. "enabled", "disabled").
	StartMode string
}

// ServiceQuery resolves the live status of a named service.
type ServiceQuery interface {
	// Query returns the status of the named service, or ErrNotFound.
	Query(ctx context.Context, name string) (ServiceStatus, error)
}

// Validator compares live service state against configured expectations.
type Validator struct {
	deps  []types.ServiceDependency
	query ServiceQuery
	log   *zap.Logger
}

// New creates a service Validator. A nil query selects the platform
// default service manager.
func New(deps []types.ServiceDependency, query ServiceQuery, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	if query == nil {
		query = newPlatformQuery(log)
	}
	return &Validator{deps: deps, query: query, log: log}
}

// Category returns the validator's result category.
func (v *Validator) Category() types.Category { return types.CategoryService }

// Validate checks every configured service in order.
func (v *Validator) Validate(ctx context.Context) []types.ValidationResult {
	results := make([]types.ValidationResult, 0, len(v.deps))
	for _, dep := range v.deps {
		results = append(results, v.check(ctx, dep))
	}
	return results
}

// check queries one service and compares its live state to the expectation.
func (v *Validator) check(ctx context.Context, dep types.ServiceDependency) types.ValidationResult {
	name := "service_status_" + dep.Name
	start := time.Now()

	status, err := v.query.Query(ctx, dep.ServiceName)
	elapsed := time.Since(start)

	if errors.Is(err, ErrNotFound) {
		return types.NewResult(types.CategoryService, name, types.StatusFail, elapsed,
			fmt.Sprintf("Service %q was not found.", dep.ServiceName)).
			WithDetails(map[string]any{"service_name": dep.ServiceName}).
			WithRemediation(fmt.Sprintf("Verify the service is installed and that %q is the correct name.", dep.ServiceName))
	}
	if err != nil {
		// Infrastructure error in the query path becomes a FAIL result,
		// never an escaping error.
		return types.NewResult(types.CategoryService, name, types.StatusFail, elapsed,
			fmt.Sprintf("Could not query service %q.", dep.ServiceName)).
			WithDetails(map[string]any{"service_name": dep.ServiceName, "error": err.Error()}).
			WithRemediation("Verify the service manager is reachable from this account.")
	}

	display := status.DisplayName
	if display == "" {
		display = dep.DisplayName
	}
	details := map[string]any{
		"service_name": dep.ServiceName,
		"display_name": display,
		"state":        status.State,
		"start_mode":   status.StartMode,
	}

	want := strings.ToLower(dep.RequiredStatus)
	got := strings.ToLower(status.State)
	if got == want {
		return types.NewResult(types.CategoryService, name, types.StatusPass, elapsed,
			fmt.Sprintf("Service %q is %s as required.", dep.ServiceName, status.State)).
			WithDetails(details)
	}

	return types.NewResult(types.CategoryService, name, types.StatusFail, elapsed,
		fmt.Sprintf("Service %q is %s, expected %s.", dep.ServiceName, status.State, dep.RequiredStatus)).
		WithDetails(details).
		WithRemediation(transitionHint(dep.ServiceName, want))
}

// transitionHint suggests the command for the required state transition.
func transitionHint(serviceName, want string) string {
	if want == "running" {
		return fmt.Sprintf("Start the service: systemctl start %s", serviceName)
	}
	return fmt.Sprintf("Stop the service: systemctl stop %s", serviceName)
}
