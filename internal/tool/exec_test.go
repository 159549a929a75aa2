package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/maxvaer/webenum/internal/target"
)

// writeScript creates an executable shell script standing in for a tool.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "faketool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSuccess(t *testing.T) {
	// Writes its arguments to the file following -o, like the real tools do.
	script := writeScript(t, `
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
echo "scanned" > "$out"
echo "done"
`)
	dir := t.TempDir()
	inv := NewInvocation(Nikto(script), target.Target{IP: "127.0.0.1", Port: 80}, dir)

	res := NewRunner(0).Run(context.Background(), inv)
	if !res.OK() {
		t.Fatalf("expected success, got exit %d err %v stderr %q", res.ExitCode, res.Err, res.Stderr)
	}
	if strings.TrimSpace(res.Stdout) != "done" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "nikto_127.0.0.1_80.txt"))
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != "scanned" {
		t.Errorf("output file = %q", data)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "connection refused" >&2; exit 3`)
	inv := NewInvocation(Gobuster(script, "words.txt"), target.Target{IP: "127.0.0.1", Port: 80}, t.TempDir())

	res := NewRunner(0).Run(context.Background(), inv)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.ErrorMessage() != "connection refused" {
		t.Errorf("ErrorMessage() = %q", res.ErrorMessage())
	}
}

func TestRunMissingBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "does-not-exist")
	inv := NewInvocation(Nikto(bin), target.Target{IP: "127.0.0.1", Port: 80}, t.TempDir())

	res := NewRunner(0).Run(context.Background(), inv)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if res.ErrorMessage() == "" {
		t.Error("expected an error message")
	}
}

func TestRunTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	inv := NewInvocation(Nikto(script), target.Target{IP: "127.0.0.1", Port: 80}, t.TempDir())

	start := time.Now()
	res := NewRunner(100 * time.Millisecond).Run(context.Background(), inv)
	if res.OK() {
		t.Fatal("expected timeout failure")
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("timeout not enforced, took %s", time.Since(start))
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}

func TestRunTimeoutKillsChildren(t *testing.T) {
	// sleep runs as a child of sh and inherits its output pipes.
	script := writeScript(t, `sleep 5
echo finished`)
	inv := NewInvocation(Nikto(script), target.Target{IP: "127.0.0.1", Port: 80}, t.TempDir())

	start := time.Now()
	res := NewRunner(100 * time.Millisecond).Run(context.Background(), inv)
	elapsed := time.Since(start)
	if res.OK() {
		t.Fatal("expected timeout failure")
	}
	if elapsed > 3*time.Second {
		t.Errorf("child process kept the invocation alive for %s", elapsed)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if strings.Contains(res.Stdout, "finished") {
		t.Error("script should not have completed")
	}
}

func TestRunCancelKillsChildren(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	inv := NewInvocation(Gobuster(script, "words.txt"), target.Target{IP: "127.0.0.1", Port: 80}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	res := NewRunner(0).Run(ctx, inv)
	if res.OK() {
		t.Fatal("expected cancellation failure")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("cancel took %s", elapsed)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", res.Err)
	}
}
