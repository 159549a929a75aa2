package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/maxvaer/webenum/internal/tool"
	"github.com/sirupsen/logrus"
)

// resultJSON is the JSON payload sent to the hook command via stdin.
type resultJSON struct {
	Tool       string `json:"tool"`
	IP         string `json:"ip"`
	Port       int    `json:"port"`
	URL        string `json:"url"`
	OutputFile string `json:"output_file"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	Stderr     string `json:"stderr,omitempty"`
}

// Runner executes a shell command for each finished tool invocation.
type Runner struct {
	cmd     string
	quiet   bool
	timeout time.Duration
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, quiet bool) *Runner {
	return &Runner{cmd: cmd, quiet: quiet, timeout: 30 * time.Second}
}

// Run executes the hook command with the result as JSON on stdin.
// The command runs with a 30-second timeout. Errors are logged but
// do not halt the run.
func (r *Runner) Run(ctx context.Context, result *tool.Result) {
	inv := result.Invocation
	status := "ok"
	if !result.OK() {
		status = "failed"
	}
	payload := resultJSON{
		Tool:       inv.Tool.Name,
		IP:         inv.Target.IP,
		Port:       inv.Target.Port,
		URL:        inv.URL,
		OutputFile: inv.OutputFile,
		Status:     status,
		ExitCode:   result.ExitCode,
	}
	if !result.OK() {
		payload.Stderr = result.ErrorMessage()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[hook] marshal error: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args := shellCommand()
	expanded := Expand(r.cmd, result)

	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		logrus.WithFields(logrus.Fields{"hook": expanded, "tool": inv.Tool.Name}).WithError(err).Warn("hook failed")
		if !r.quiet {
			fmt.Fprintf(os.Stderr, "[hook] error: %v\n", err)
		}
		return
	}

	if len(output) > 0 && !r.quiet {
		fmt.Fprintf(os.Stderr, "[hook] %s", output)
	}
}

// Expand replaces {tool}, {url}, {ip}, {port}, {file} and {status}
// placeholders in cmd.
func Expand(cmd string, result *tool.Result) string {
	inv := result.Invocation
	status := "ok"
	if !result.OK() {
		status = "failed"
	}
	return strings.NewReplacer(
		"{tool}", inv.Tool.Name,
		"{url}", inv.URL,
		"{ip}", inv.Target.IP,
		"{port}", strconv.Itoa(inv.Target.Port),
		"{file}", inv.OutputFile,
		"{status}", status,
	).Replace(cmd)
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
