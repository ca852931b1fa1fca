package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/preflight/internal/types"
)

func newTestReport() *types.Report {
	results := []types.ValidationResult{
		types.NewResult(types.CategoryNetwork, "tcp_connection_app", types.StatusPass, 12*time.Millisecond, "TCP connection to 10.0.0.5:8443 succeeded in 12ms."),
		types.NewResult(types.CategoryNetwork, "http_response_app", types.StatusWarn, 40*time.Millisecond, "https://10.0.0.5:8443/ is reachable but returned HTTP 503.").
			WithRemediation("Investigate why the app returns HTTP 503."),
		types.NewResult(types.CategoryStorage, "disk_space_root", types.StatusFail, 3*time.Millisecond, "/ is critically low on space: 2.1 GB free (2.3%).").
			WithRemediation("Free up space on /."),
	}
	start := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	return &types.Report{
		Summary:       types.Summarize(results),
		ExecutionInfo: types.NewExecutionInfo(start, start.Add(55*time.Millisecond), "staging", "1.2.0"),
		SystemInfo: types.SystemInfo{
			Hostname: "build-agent-07", OS: "linux", Arch: "amd64", CPUCount: 8,
			TotalMemoryGB: 32, AvailableMemoryGB: 20, User: "ci",
		},
		ValidationResults: map[string][]types.ValidationResult{
			"network": {results[0], results[1]},
			"disk":    {results[2]},
		},
	}
}

func TestJSONFormatter_RoundTrip(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, report))

	var decoded types.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.Summary, decoded.Summary)
	assert.Equal(t, report.ExecutionInfo, decoded.ExecutionInfo)
	assert.Equal(t, report.SystemInfo, decoded.SystemInfo)
	assert.Equal(t, report.ValidationResults["network"], decoded.ValidationResults["network"])
}

func TestJSONFormatter_ReportShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newTestReport()))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"summary", "execution_info", "system_info", "validation_results"} {
		assert.Contains(t, raw, key)
	}

	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw["summary"], &summary))
	for _, key := range []string{"total_checks", "passed", "failed", "warnings", "skipped", "success_rate_percent", "overall_status"} {
		assert.Contains(t, summary, key)
	}
}

func TestJSONLFormatter_OneLinePerResultPlusSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Write(&buf, newTestReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "3 results + 1 summary line")

	var first types.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "tcp_connection_app", first.CheckName)

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "summary", last["record"])
}

func TestTextFormatter_Write(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{Dumb: true}
	require.NoError(t, f.Write(&buf, newTestReport()))
	out := buf.String()

	assert.Contains(t, out, "build-agent-07")
	assert.Contains(t, out, "tcp_connection_app")
	assert.Contains(t, out, "disk_space_root")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1 warnings")
	assert.Contains(t, out, "Success rate: 33.33%")
	assert.Contains(t, out, "fix:", "failing checks render their remediation")
}

func TestTextFormatter_VerboseIncludesDetails(t *testing.T) {
	report := newTestReport()
	report.ValidationResults["network"][0] = report.ValidationResults["network"][0].
		WithDetails(map[string]any{"host": "10.0.0.5", "port": 8443})

	var buf bytes.Buffer
	f := &TextFormatter{Dumb: true, Verbose: true}
	require.NoError(t, f.Write(&buf, report))
	assert.Contains(t, buf.String(), "10.0.0.5")
}

func TestIsDumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	assert.True(t, IsDumbTerm())
	t.Setenv("TERM", "xterm-256color")
	assert.False(t, IsDumbTerm())
}
