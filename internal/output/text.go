package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/maxvaer/webenum/internal/tool"
	"github.com/pterm/pterm"
)

// ANSI color codes.
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorDim   = "\033[2m"
)

// TextWriter writes one line per invocation and a summary table.
type TextWriter struct {
	w       io.Writer
	footer  io.Writer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty, stdout
// is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
	}
	return &TextWriter{w: w, footer: os.Stderr, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	dim, reset := colorDim, colorReset
	if t.noColor {
		dim, reset = "", ""
	}
	_, err := fmt.Fprintf(t.w, "%sStatus  Tool      Exit  URL -> Output%s\n", dim, reset)
	return err
}

func (t *TextWriter) WriteResult(result *tool.Result) error {
	color, reset := colorGreen, colorReset
	label := "OK"
	if !result.OK() {
		color = colorRed
		label = "FAIL"
	}
	if t.noColor {
		color, reset = "", ""
	}

	_, err := fmt.Fprintf(t.w, "%s%-6s%s  %-8s  %4d  %s -> %s\n",
		color, label, reset,
		result.Invocation.Tool.Name,
		result.ExitCode,
		result.Invocation.URL,
		result.Invocation.OutputFile,
	)
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Targets", "Invocations", "Succeeded", "Failed", "Skipped", "Duration"},
		{
			strconv.Itoa(stats.Targets),
			strconv.Itoa(stats.Invocations),
			strconv.Itoa(stats.Succeeded),
			strconv.Itoa(stats.Failed),
			strconv.Itoa(stats.Skipped),
			stats.Duration.Round(time.Millisecond).String(),
		},
	}).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(t.footer, "\n%s\n", table)
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}
