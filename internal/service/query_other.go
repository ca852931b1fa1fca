//go:build !linux

package service

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// unsupportedQuery is the fallback on platforms without a wired service
// manager. Every query errors, which the validator reports as a FAIL with
// the platform named in the details.
type unsupportedQuery struct{}

// newPlatformQuery returns the fallback ServiceQuery on non-Linux platforms.
func newPlatformQuery(_ *zap.Logger) ServiceQuery {
	return unsupportedQuery{}
}

func (unsupportedQuery) Query(_ context.Context, name string) (ServiceStatus, error) {
	return ServiceStatus{}, fmt.Errorf("service manager queries are not supported on %s", runtime.GOOS)
}
