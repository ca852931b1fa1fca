// Package software validates that required executables are installed and
// meet minimum versions.
package software

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/types"
)

// versionProbeTimeout bounds each `executable --version` invocation.
const versionProbeTimeout = 10 * time.Second

// Validator checks executable presence and version for each configured
// software dependency.
type Validator struct {
	deps []types.SoftwareDependency
	log  *zap.Logger

	// lookPath resolves an executable against PATH. Injectable for tests.
	lookPath func(file string) (string, error)

	// runVersion invokes the executable's version command and returns its
	// combined output. Injectable for tests.
	runVersion func(ctx context.Context, exe, arg string) ([]byte, error)
}

// New creates a software Validator for the given dependencies.
func New(deps []types.SoftwareDependency, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		deps:       deps,
		log:        log,
		lookPath:   exec.LookPath,
		runVersion: runVersionCommand,
	}
}

// Category returns the validator's result category.
func (v *Validator) Category() types.Category { return types.CategorySoftware }

// Validate checks every configured dependency in order.
func (v *Validator) Validate(ctx context.Context) []types.ValidationResult {
	results := make([]types.ValidationResult, 0, len(v.deps))
	for _, dep := range v.deps {
		results = append(results, v.check(ctx, dep))
	}
	return results
}

// check resolves one dependency: presence, version scrape, minimum compare.
// A missing executable is a hard FAIL; everything version-related degrades
// to WARN at worst, since the version requirement is a soft dependency.
func (v *Validator) check(ctx context.Context, dep types.SoftwareDependency) types.ValidationResult {
	name := "software_" + dep.Name
	start := time.Now()

	path, err := v.lookPath(dep.Executable)
	if err != nil {
		hint := fmt.Sprintf("Install %s and make sure %q is on the search path.", dep.Name, dep.Executable)
		if dep.InstallationURL != "" {
			hint += " See " + dep.InstallationURL
		}
		return types.NewResult(types.CategorySoftware, name, types.StatusFail, time.Since(start),
			fmt.Sprintf("Executable %q was not found on the search path.", dep.Executable)).
			WithDetails(map[string]any{"executable": dep.Executable}).
			WithRemediation(hint)
	}

	details := map[string]any{
		"executable": dep.Executable,
		"path":       path,
	}

	if dep.VersionArg == "" {
		return types.NewResult(types.CategorySoftware, name, types.StatusPass, time.Since(start),
			fmt.Sprintf("%s is installed at %s.", dep.Name, path)).
			WithDetails(details)
	}

	out, err := v.runVersion(ctx, dep.Executable, dep.VersionArg)
	if err != nil {
		// Some tools exit nonzero on --version; the binary exists, so
		// this is ambiguity rather than a hard failure.
		details["error"] = err.Error()
		return types.NewResult(types.CategorySoftware, name, types.StatusWarn, time.Since(start),
			fmt.Sprintf("%s is installed but its version could not be determined.", dep.Name)).
			WithDetails(details).
			WithRemediation(fmt.Sprintf("Run %q %s manually to inspect the output.", dep.Executable, dep.VersionArg))
	}

	version, ok := ExtractVersion(string(out), dep.VersionPattern)
	if !ok {
		// Presence alone satisfies a dependency with no declared minimum.
		details["version_output"] = truncate(string(out), 200)
		return types.NewResult(types.CategorySoftware, name, types.StatusPass, time.Since(start),
			fmt.Sprintf("%s is installed; version string could not be parsed.", dep.Name)).
			WithDetails(details)
	}

	details["version"] = version
	if dep.MinimumVersion != "" {
		details["minimum_version"] = dep.MinimumVersion
		if CompareVersions(version, dep.MinimumVersion) < 0 {
			return types.NewResult(types.CategorySoftware, name, types.StatusWarn, time.Since(start),
				fmt.Sprintf("%s %s is below the recommended minimum %s.", dep.Name, version, dep.MinimumVersion)).
				WithDetails(details).
				WithRemediation(fmt.Sprintf("Upgrade %s to %s or newer.", dep.Name, dep.MinimumVersion))
		}
	}

	return types.NewResult(types.CategorySoftware, name, types.StatusPass, time.Since(start),
		fmt.Sprintf("%s %s is installed.", dep.Name, version)).
		WithDetails(details)
}

// runVersionCommand invokes `exe arg` with a bounded timeout and returns
// the combined output.
func runVersionCommand(ctx context.Context, exe, arg string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, exe, arg).CombinedOutput()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
