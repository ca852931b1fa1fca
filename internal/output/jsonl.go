package output

import (
	"encoding/json"
	"io"

	"github.com/opsgate/preflight/internal/types"
)

// JSONLFormatter writes one JSON line per validation result, for log
// pipelines that ingest line-delimited records. Results follow the fixed
// category order; the summary is emitted as a final line.
type JSONLFormatter struct{}

// jsonlSummary wraps the summary line so consumers can tell it apart from
// result lines.
type jsonlSummary struct {
	Record  string        `json:"record"`
	Summary types.Summary `json:"summary"`
}

// Write renders the report as JSONL.
func (f *JSONLFormatter) Write(w io.Writer, report *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, cat := range types.CategoryOrder {
		for _, r := range report.ValidationResults[types.ReportGroup[cat]] {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	}

	return enc.Encode(jsonlSummary{Record: "summary", Summary: report.Summary})
}
