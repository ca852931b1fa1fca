package software

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/preflight/internal/types"
)

func newTestValidator(deps []types.SoftwareDependency) *Validator {
	v := New(deps, nil)
	v.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	return v
}

func TestCheck_ExecutableMissing(t *testing.T) {
	dep := types.SoftwareDependency{
		Name:            "terraform",
		Executable:      "terraform",
		VersionArg:      "--version",
		InstallationURL: "https://developer.hashicorp.com/terraform/install",
	}
	v := New([]types.SoftwareDependency{dep}, nil)
	v.lookPath = func(string) (string, error) { return "", errors.New("executable file not found in $PATH") }

	spawned := false
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		spawned = true
		return nil, nil
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusFail, results[0].Status)
	assert.Contains(t, results[0].Remediation, "https://developer.hashicorp.com/terraform/install")
	assert.False(t, spawned, "no process may be spawned when the executable is absent")
}

func TestCheck_VersionMeetsMinimum(t *testing.T) {
	dep := types.SoftwareDependency{
		Name: "git", Executable: "git", VersionArg: "--version", MinimumVersion: "2.30.0",
	}
	v := newTestValidator([]types.SoftwareDependency{dep})
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		return []byte("git version 2.39.2"), nil
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusPass, results[0].Status)
	assert.Equal(t, "2.39.2", results[0].Details["version"])
}

func TestCheck_VersionBelowMinimumIsSoftFailure(t *testing.T) {
	dep := types.SoftwareDependency{
		Name: "git", Executable: "git", VersionArg: "--version", MinimumVersion: "2.40.0",
	}
	v := newTestValidator([]types.SoftwareDependency{dep})
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		return []byte("git version 2.39.2"), nil
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusWarn, results[0].Status, "a below-minimum version recommends an upgrade, it does not block")
	assert.Contains(t, results[0].Remediation, "Upgrade")
}

func TestCheck_NonZeroVersionExitWarns(t *testing.T) {
	dep := types.SoftwareDependency{Name: "oddtool", Executable: "oddtool", VersionArg: "--version"}
	v := newTestValidator([]types.SoftwareDependency{dep})
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		return []byte("usage: oddtool ..."), errors.New("exit status 2")
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusWarn, results[0].Status)
}

func TestCheck_UnparseableVersionStillPasses(t *testing.T) {
	dep := types.SoftwareDependency{Name: "mystery", Executable: "mystery", VersionArg: "--version"}
	v := newTestValidator([]types.SoftwareDependency{dep})
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		return []byte("built from source, no version"), nil
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusPass, results[0].Status, "presence alone satisfies a dependency whose version cannot be parsed")
	assert.Contains(t, results[0].Message, "could not be parsed")
}

func TestCheck_NoVersionArgChecksPresenceOnly(t *testing.T) {
	dep := types.SoftwareDependency{Name: "unzip", Executable: "unzip"}
	v := newTestValidator([]types.SoftwareDependency{dep})

	spawned := false
	v.runVersion = func(context.Context, string, string) ([]byte, error) {
		spawned = true
		return nil, nil
	}

	results := v.Validate(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusPass, results[0].Status)
	assert.False(t, spawned)
}
