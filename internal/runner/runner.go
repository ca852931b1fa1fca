// Package runner orchestrates validation runs: it selects categories,
// invokes each validator, aggregates results, and assembles the report.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/opsgate/preflight/internal/disk"
	"github.com/opsgate/preflight/internal/network"
	"github.com/opsgate/preflight/internal/remote"
	"github.com/opsgate/preflight/internal/service"
	"github.com/opsgate/preflight/internal/software"
	"github.com/opsgate/preflight/internal/sysinfo"
	"github.com/opsgate/preflight/internal/types"
)

// Validator produces the results for one check category. Validators share
// no mutable state; each check inside one is bounded by its own timeout.
type Validator interface {
	// Category identifies the results this validator produces.
	Category() types.Category

	// Validate runs every check in the category and returns the results
	// in configuration order. Probe failures become FAIL results, never
	// errors; a broken check must not abort the run.
	Validate(ctx context.Context) []types.ValidationResult
}

// SystemInfoSource provides the host snapshot for report context.
type SystemInfoSource interface {
	Collect() types.SystemInfo
}

// Runner executes validators in a fixed category order and aggregates
// their results. Zero-value fields select production defaults, which keeps
// the orchestration testable with fakes.
type Runner struct {
	// Config is the loaded run configuration.
	Config *types.Config

	// Log receives debug/progress logging. Nil disables logging.
	Log *zap.Logger

	// Validators overrides the default validator set. Nil builds the
	// default set from Config.
	Validators []Validator

	// SysInfo overrides the default system info collector.
	SysInfo SystemInfoSource

	// Version is the tool version stamped into execution_info.
	Version string

	// Environment is the target environment tag (--environment).
	Environment string

	// Progress is called before each category runs, with the 1-based
	// position and the total number of categories in this run. Nil
	// disables progress reporting.
	Progress func(done, total int, cat types.Category)
}

// Run executes the selected categories and returns the complete report.
// An empty selection runs everything. Categories run in the fixed order
// network, disk, services, software, remote; the runner always completes
// the full sweep regardless of individual failures, so a complete report
// is always available for diagnosis.
func (r *Runner) Run(ctx context.Context, selected []types.Category) *types.Report {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	if r.SysInfo == nil {
		r.SysInfo = sysinfo.NewCollector(r.Log)
	}
	if r.Validators == nil {
		r.Validators = defaultValidators(r.Config, r.Log)
	}

	start := time.Now()
	info := r.SysInfo.Collect()

	wanted := selectionSet(selected)
	byCategory := make(map[types.Category]Validator, len(r.Validators))
	for _, v := range r.Validators {
		byCategory[v.Category()] = v
	}

	var order []types.Category
	for _, cat := range types.CategoryOrder {
		if wanted[cat] {
			if _, ok := byCategory[cat]; ok {
				order = append(order, cat)
			}
		}
	}

	groups := make(map[string][]types.ValidationResult)
	var all []types.ValidationResult
	for i, cat := range order {
		v := byCategory[cat]
		if r.Progress != nil {
			r.Progress(i+1, len(order), cat)
		}
		r.Log.Debug("running category", zap.String("category", string(cat)))
		results := r.runCategory(ctx, v)
		group := types.ReportGroup[cat]
		groups[group] = append(groups[group], results...)
		all = append(all, results...)
	}

	end := time.Now()
	return &types.Report{
		Summary:           types.Summarize(all),
		ExecutionInfo:     types.NewExecutionInfo(start, end, r.Environment, r.Version),
		SystemInfo:        info,
		ValidationResults: groups,
		Configuration:     r.Config.Redacted(),
	}
}

// runCategory invokes one validator with panic isolation: a crash inside a
// validator becomes a FAIL result instead of losing the results already
// collected.
func (r *Runner) runCategory(ctx context.Context, v Validator) (results []types.ValidationResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Error("validator panicked",
				zap.String("category", string(v.Category())),
				zap.Any("panic", rec))
			results = append(results, types.NewResult(v.Category(),
				string(v.Category())+"_validator", types.StatusFail, time.Since(start),
				fmt.Sprintf("The %s validator crashed; see details.", v.Category())).
				WithDetails(map[string]any{"panic": fmt.Sprint(rec)}).
				WithRemediation("Re-run with --verbose and report the panic details."))
		}
	}()
	return v.Validate(ctx)
}

// selectionSet expands an empty selection to every category.
func selectionSet(selected []types.Category) map[types.Category]bool {
	wanted := make(map[types.Category]bool, len(types.CategoryOrder))
	if len(selected) == 0 {
		for _, cat := range types.CategoryOrder {
			wanted[cat] = true
		}
		return wanted
	}
	for _, cat := range selected {
		wanted[cat] = true
	}
	return wanted
}

// defaultValidators builds the production validator set from configuration.
func defaultValidators(cfg *types.Config, log *zap.Logger) []Validator {
	if cfg == nil {
		return nil
	}
	return []Validator{
		network.New(cfg.NetworkEndpoints, log),
		disk.New(cfg.DiskRequirements, log),
		service.New(cfg.Services, nil, log),
		software.New(cfg.SoftwareDependencies, log),
		remote.New(cfg.RemoteTests, nil, log),
	}
}
