package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/maxvaer/webenum/internal/tool"
)

type jsonEntry struct {
	Tool       string   `json:"tool"`
	IP         string   `json:"ip"`
	Port       int      `json:"port"`
	URL        string   `json:"url"`
	OutputFile string   `json:"output_file"`
	Command    []string `json:"command"`
	Status     string   `json:"status"`
	ExitCode   int      `json:"exit_code"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

type jsonStats struct {
	Targets     int   `json:"targets"`
	Invocations int   `json:"invocations"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	Skipped     int   `json:"skipped"`
	DurationMS  int64 `json:"duration_ms"`
}

type jsonReport struct {
	RunID     string      `json:"run_id"`
	StartedAt time.Time   `json:"started_at"`
	Results   []jsonEntry `json:"results"`
	Stats     jsonStats   `json:"stats"`
}

// JSONWriter buffers results and writes a single JSON report on footer.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
	report jsonReport
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile, runID string) (*JSONWriter, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}
	return &JSONWriter{
		w:      w,
		closer: closer,
		report: jsonReport{RunID: runID, StartedAt: time.Now().UTC(), Results: []jsonEntry{}},
	}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(result *tool.Result) error {
	inv := result.Invocation
	entry := jsonEntry{
		Tool:       inv.Tool.Name,
		IP:         inv.Target.IP,
		Port:       inv.Target.Port,
		URL:        inv.URL,
		OutputFile: inv.OutputFile,
		Command:    inv.Command(),
		Status:     status(result),
		ExitCode:   result.ExitCode,
		DurationMS: result.Duration.Milliseconds(),
	}
	if !result.OK() {
		entry.Error = result.ErrorMessage()
	}
	j.report.Results = append(j.report.Results, entry)
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	j.report.Stats = jsonStats{
		Targets:     stats.Targets,
		Invocations: stats.Invocations,
		Succeeded:   stats.Succeeded,
		Failed:      stats.Failed,
		Skipped:     stats.Skipped,
		DurationMS:  stats.Duration.Milliseconds(),
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.report)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
