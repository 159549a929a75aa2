package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maxvaer/webenum/internal/target"
	"github.com/maxvaer/webenum/internal/tool"
)

func sampleResults(dir string) []*tool.Result {
	ok := tool.Result{
		Invocation: tool.NewInvocation(tool.Gobuster("", "words.txt"), target.Target{IP: "10.0.0.1", Port: 80}, dir),
		Stdout:     "/admin (Status: 200)\n",
		Duration:   1500 * time.Millisecond,
	}
	failed := tool.Result{
		Invocation: tool.NewInvocation(tool.Nikto(""), target.Target{IP: "10.0.0.1", Port: 443}, dir),
		Stderr:     "ERROR: Cannot resolve hostname\n",
		ExitCode:   1,
		Err:        errors.New("nikto exited with status 1"),
	}
	return []*tool.Result{&ok, &failed}
}

func sampleStats() Stats {
	return Stats{Targets: 1, Invocations: 2, Succeeded: 1, Failed: 1, Duration: 2 * time.Second}
}

func writeAll(t *testing.T, w Writer, results []*tool.Result) {
	t.Helper()
	if err := w.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if err := w.WriteResult(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.WriteFooter(sampleStats()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTextWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	w, err := NewTextWriter(path, true, false)
	if err != nil {
		t.Fatal(err)
	}
	var footer bytes.Buffer
	w.footer = &footer

	writeAll(t, w, sampleResults(dir))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "\033[") {
		t.Error("unexpected ANSI codes with noColor")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "OK") || !strings.Contains(lines[1], "gobuster_10.0.0.1_80.txt") {
		t.Errorf("unexpected success row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "FAIL") || !strings.Contains(lines[2], "https://10.0.0.1:443") {
		t.Errorf("unexpected failure row: %q", lines[2])
	}
	if !strings.Contains(footer.String(), "Succeeded") {
		t.Errorf("footer missing summary table: %q", footer.String())
	}
}

func TestTextWriterQuiet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	w, err := NewTextWriter(path, true, true)
	if err != nil {
		t.Fatal(err)
	}
	var footer bytes.Buffer
	w.footer = &footer

	writeAll(t, w, sampleResults(dir))

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Status") {
		t.Error("quiet mode should omit header")
	}
	if footer.Len() != 0 {
		t.Error("quiet mode should omit footer")
	}
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	w, err := NewJSONWriter(path, "run-123")
	if err != nil {
		t.Fatal(err)
	}
	writeAll(t, w, sampleResults(dir))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report jsonReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.RunID != "run-123" {
		t.Errorf("RunID = %q", report.RunID)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}
	first := report.Results[0]
	if first.Status != "ok" || first.Tool != "gobuster" || first.DurationMS != 1500 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Command[0] != "gobuster" || first.Command[1] != "dir" {
		t.Errorf("unexpected command: %v", first.Command)
	}
	second := report.Results[1]
	if second.Status != "failed" || second.Error != "ERROR: Cannot resolve hostname" {
		t.Errorf("unexpected second entry: %+v", second)
	}
	if report.Stats.Failed != 1 || report.Stats.Invocations != 2 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	writeAll(t, w, sampleResults(dir))

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0][0] != "tool" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "gobuster" || records[1][2] != "80" || records[1][5] != "ok" {
		t.Errorf("unexpected row: %v", records[1])
	}
	if records[2][5] != "failed" || records[2][6] != "1" {
		t.Errorf("unexpected row: %v", records[2])
	}
}

func TestNewSelectsFormat(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		check  func(Writer) bool
	}{
		{"json", func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{"csv", func(w Writer) bool { _, ok := w.(*CSVWriter); return ok }},
		{"text", func(w Writer) bool { _, ok := w.(*TextWriter); return ok }},
		{"", func(w Writer) bool { _, ok := w.(*TextWriter); return ok }},
	}
	for _, tt := range tests {
		w, err := New(tt.format, filepath.Join(dir, "r-"+tt.format), "id", true, true)
		if err != nil {
			t.Fatal(err)
		}
		if !tt.check(w) {
			t.Errorf("New(%q) returned %T", tt.format, w)
		}
		w.Close()
	}
}
