package output

import (
	"time"

	"github.com/maxvaer/webenum/internal/tool"
)

// Stats holds aggregate run statistics.
type Stats struct {
	Targets     int
	Invocations int
	Succeeded   int
	Failed      int
	Skipped     int // already completed in a resumed run
	Duration    time.Duration
}

// Writer is implemented by each report format.
type Writer interface {
	WriteHeader() error
	WriteResult(result *tool.Result) error
	WriteFooter(stats Stats) error
	Close() error
}

// New returns the writer for format. An empty outputFile means stdout.
func New(format, outputFile, runID string, noColor, quiet bool) (Writer, error) {
	switch format {
	case "json":
		return NewJSONWriter(outputFile, runID)
	case "csv":
		return NewCSVWriter(outputFile)
	default:
		return NewTextWriter(outputFile, noColor, quiet)
	}
}

func status(result *tool.Result) string {
	if result.OK() {
		return "ok"
	}
	return "failed"
}
