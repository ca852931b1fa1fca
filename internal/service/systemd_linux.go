//go:build linux

package service

import (
	"context"
	"fmt"
	"strings"

	sddbus "github.com/coreos/go-systemd/v22/dbus"
	"go.uber.org/zap"
)

// systemdQuery resolves service state from systemd over the D-Bus API.
// A connection is opened per query and closed immediately: preflight runs
// are short-lived and the handful of configured services does not justify
// holding a bus connection open.
type systemdQuery struct {
	log *zap.Logger
}

// newPlatformQuery returns the systemd-backed ServiceQuery on Linux.
func newPlatformQuery(log *zap.Logger) ServiceQuery {
	return &systemdQuery{log: log}
}

// Query reads unit properties for the named service.
func (q *systemdQuery) Query(ctx context.Context, name string) (ServiceStatus, error) {
	conn, err := sddbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return ServiceStatus{}, fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	unit := unitName(name)
	props, err := conn.GetUnitPropertiesContext(ctx, unit)
	if err != nil {
		return ServiceStatus{}, fmt.Errorf("query unit %s: %w", unit, err)
	}

	if s, _ := props["LoadState"].(string); s == "not-found" {
		return ServiceStatus{}, ErrNotFound
	}

	status := ServiceStatus{
		DisplayName: stringProp(props, "Description"),
		State:       normalizeState(stringProp(props, "ActiveState")),
		StartMode:   stringProp(props, "UnitFileState"),
	}
	q.log.Debug("systemd unit queried",
		zap.String("unit", unit),
		zap.String("state", status.State))
	return status, nil
}

// unitName appends the .service suffix when the name has no unit type.
func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

// normalizeState maps systemd ActiveState values onto the running/stopped
// vocabulary the configuration uses.
func normalizeState(active string) string {
	switch active {
	case "active", "reloading":
		return "running"
	case "activating":
		return "starting"
	case "deactivating":
		return "stopping"
	default:
		// inactive, failed, or unknown
		return "stopped"
	}
}

func stringProp(props map[string]interface{}, key string) string {
	s, _ := props[key].(string)
	return s
}
