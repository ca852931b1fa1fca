// Package output provides formatters that render validation reports in
// different formats.
package output

import (
	"io"
	"os"

	"github.com/opsgate/preflight/internal/types"
)

// Formatter writes a validation report to the given writer.
type Formatter interface {
	Write(w io.Writer, report *types.Report) error
}

// IsDumbTerm returns true when the terminal doesn't support Unicode.
func IsDumbTerm() bool {
	t := os.Getenv("TERM")
	return t == "dumb" || t == ""
}
