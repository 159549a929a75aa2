package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/maxvaer/webenum/internal/tool"
)

// CSVWriter writes one row per invocation.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
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
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"tool", "ip", "port", "url", "output_file", "status", "exit_code", "duration_ms", "error"})
}

func (c *CSVWriter) WriteResult(result *tool.Result) error {
	inv := result.Invocation
	errMsg := ""
	if !result.OK() {
		errMsg = result.ErrorMessage()
	}
	return c.w.Write([]string{
		inv.Tool.Name,
		inv.Target.IP,
		strconv.Itoa(inv.Target.Port),
		inv.URL,
		inv.OutputFile,
		status(result),
		strconv.Itoa(result.ExitCode),
		strconv.FormatInt(result.Duration.Milliseconds(), 10),
		errMsg,
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
