package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/opsgate/preflight/internal/types"
)

const (
	// maxLine caps line width even on ultra-wide terminals.
	maxLine = 100
	// ruleWidth is the width of horizontal divider rules.
	ruleWidth = 64
)

// TextFormatter writes a colored, human-readable validation summary.
type TextFormatter struct {
	Verbose bool // include details for passing checks too
	Width   int  // terminal width for wrapping; 0 = unknown
	Dumb    bool // TERM=dumb, single-char ASCII fallback icons
}

// Color helpers, each a sprint function.
var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()

	cRedBold   = color.New(color.FgRed, color.Bold).SprintFunc()
	cGreenBold = color.New(color.FgGreen, color.Bold).SprintFunc()
	cYellBold  = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// groupTitles are the section headings per report group.
var groupTitles = map[string]string{
	"network":  "Network",
	"disk":     "Disk Space",
	"services": "Services",
	"software": "Software",
	"winrm":    "Remote Sessions",
}

// Write renders the full text report.
func (f *TextFormatter) Write(w io.Writer, report *types.Report) error {
	f.writeHeader(w, report)
	f.writeSystem(w, report)
	f.writeResults(w, report)
	f.writeSummary(w, report)
	fmt.Fprintln(w)
	return nil
}

func (f *TextFormatter) writeHeader(w io.Writer, r *types.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s v%s\n", cBold("preflight"), r.ExecutionInfo.ToolVersion)
	if r.ExecutionInfo.Environment != "" {
		fmt.Fprintf(w, "  %s %s\n", cDim("Environment:"), r.ExecutionInfo.Environment)
	}
	fmt.Fprintf(w, "  %s %s\n", cDim("Run started:"), r.ExecutionInfo.StartedAt)
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeSystem(w io.Writer, r *types.Report) {
	sys := r.SystemInfo
	fmt.Fprintf(w, "  %s\n", cBold("▸ System"))
	fmt.Fprintf(w, "    Host:   %s\n", sys.Hostname)
	osLine := sys.OS
	if sys.Platform != "" {
		osLine += " · " + sys.Platform
	}
	fmt.Fprintf(w, "    OS:     %s (%s)\n", osLine, sys.Arch)
	fmt.Fprintf(w, "    CPU:    %d logical cores\n", sys.CPUCount)
	if sys.TotalMemoryGB > 0 {
		fmt.Fprintf(w, "    Memory: %.1f GB total · %.1f GB available\n",
			sys.TotalMemoryGB, sys.AvailableMemoryGB)
	}
	if sys.User != "" {
		fmt.Fprintf(w, "    User:   %s\n", sys.User)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeResults(w io.Writer, r *types.Report) {
	for _, cat := range types.CategoryOrder {
		group := types.ReportGroup[cat]
		results := r.ValidationResults[group]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\n", cBold("▸ "+groupTitles[group]))
		for _, res := range results {
			f.writeResult(w, res)
		}
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeResult(w io.Writer, res types.ValidationResult) {
	icon, paint := f.statusStyle(res.Status)
	duration := cDim(fmt.Sprintf("%dms", res.DurationMS))
	fmt.Fprintf(w, "    %s %-34s %s  %s\n",
		paint(icon), res.CheckName, duration, f.wrap(res.Message, 6))

	if res.Status != types.StatusPass && res.Remediation != "" {
		fmt.Fprintf(w, "        %s %s\n", cDim("fix:"), f.wrap(res.Remediation, 8))
	}
	if f.Verbose && len(res.Details) > 0 {
		for _, k := range sortedKeys(res.Details) {
			if k == "error" && res.Status == types.StatusPass {
				continue
			}
			fmt.Fprintf(w, "        %s %v\n", cDim(k+":"), res.Details[k])
		}
	}
}

func (f *TextFormatter) writeSummary(w io.Writer, r *types.Report) {
	s := r.Summary
	fmt.Fprintf(w, "  %s\n", cDim(strings.Repeat("─", ruleWidth)))

	overall := string(s.OverallStatus)
	switch s.OverallStatus {
	case types.StatusFail:
		overall = cRedBold(overall)
	case types.StatusWarn:
		overall = cYellBold(overall)
	default:
		overall = cGreenBold(overall)
	}

	fmt.Fprintf(w, "  %s %s · %d checks in %dms\n",
		cBold("▸ Overall:"), overall, s.TotalChecks, r.ExecutionInfo.DurationMS)
	fmt.Fprintf(w, "    %s %d passed · %s %d failed · %s %d warnings · %d skipped\n",
		cGreen(f.icon("pass")), s.Passed,
		cRed(f.icon("fail")), s.Failed,
		cYellow(f.icon("warn")), s.Warnings,
		s.Skipped)
	fmt.Fprintf(w, "    Success rate: %.2f%%\n", s.SuccessRatePercent)
}

// statusStyle returns the icon and color for a status.
func (f *TextFormatter) statusStyle(s types.Status) (string, func(a ...interface{}) string) {
	switch s {
	case types.StatusPass:
		return f.icon("pass"), cGreen
	case types.StatusWarn:
		return f.icon("warn"), cYellow
	case types.StatusFail:
		return f.icon("fail"), cRed
	default:
		return f.icon("skip"), cCyan
	}
}

// icon returns the status glyph, with an ASCII fallback for dumb terminals.
func (f *TextFormatter) icon(kind string) string {
	if f.Dumb {
		switch kind {
		case "pass":
			return "+"
		case "warn":
			return "!"
		case "fail":
			return "x"
		default:
			return "-"
		}
	}
	switch kind {
	case "pass":
		return "✓"
	case "warn":
		return "⚠"
	case "fail":
		return "✗"
	default:
		return "○"
	}
}

// wrap soft-wraps text at the effective width, indenting continuation lines.
func (f *TextFormatter) wrap(text string, indent int) string {
	width := maxLine
	if f.Width > 0 && f.Width < maxLine {
		width = f.Width
	}
	avail := width - indent
	if avail < 20 || len(text) <= avail {
		return text
	}

	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(text) {
		if line > 0 && line+len(word)+1 > avail {
			b.WriteString("\n" + strings.Repeat(" ", indent))
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
