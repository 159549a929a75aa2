package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maxvaer/webenum/internal/config"
	"github.com/maxvaer/webenum/internal/hook"
	"github.com/maxvaer/webenum/internal/logparse"
	"github.com/maxvaer/webenum/internal/output"
	"github.com/maxvaer/webenum/internal/resume"
	"github.com/maxvaer/webenum/internal/tool"
	"github.com/maxvaer/webenum/internal/wordlist"
	"github.com/maxvaer/webenum/pkg/version"
	"github.com/sirupsen/logrus"
)

// console receives the human-readable progress messages.
var console io.Writer = os.Stderr

// Run executes the full pipeline: prepare the output directory, parse the
// log, then run every tool against every target one at a time. Tool
// failures are reported and skipped; only setup errors, report write errors
// and cancellation are returned.
func Run(ctx context.Context, opts *config.Options) error {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	targets, err := logparse.Load(opts.LogFile)
	if err != nil {
		logrus.WithField("log_file", opts.LogFile).WithError(err).Error("parsing log file")
		fmt.Fprintf(console, "[!] Error reading log file: %v\n", err)
		targets = nil
	}
	if len(targets) == 0 {
		fmt.Fprintf(console, "[!] No targets found in the log file.\n")
		return nil
	}

	runID := uuid.New().String()
	log := logrus.WithField("run_id", runID)
	log.WithField("targets", len(targets)).Info("starting run")

	tools := buildTools(opts)

	words := wordlistSize(opts)
	if !opts.Quiet {
		printBanner(opts, len(targets), words)
	}

	resumeState, err := loadResume(opts)
	if err != nil {
		return err
	}

	out, err := output.New(opts.ReportFormat, opts.ReportFile, runID, opts.NoColor, opts.Quiet)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	if err := out.WriteHeader(); err != nil {
		return err
	}

	var hookRunner *hook.Runner
	if opts.OnResultCmd != "" {
		hookRunner = hook.NewRunner(opts.OnResultCmd, opts.Quiet)
	}

	toolRunner := tool.NewRunner(opts.ToolTimeout)
	stats := output.Stats{Targets: len(targets)}
	start := time.Now()

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		info(opts, "[*] Processing target: %s\n", t)

		for _, tl := range tools {
			inv := tool.NewInvocation(tl, t, opts.OutputDir)
			entry := resume.Entry{Tool: tl.Name, IP: t.IP, Port: t.Port}

			if resumeState != nil && resumeState.IsCompleted(entry) {
				stats.Skipped++
				info(opts, "[*] Skipping %s, already completed\n", inv.Description())
				continue
			}

			result := runInvocation(ctx, toolRunner, inv, opts)
			if ctx.Err() != nil {
				break
			}
			stats.Invocations++
			if result.OK() {
				stats.Succeeded++
			} else {
				stats.Failed++
			}

			log.WithFields(logrus.Fields{
				"tool":      tl.Name,
				"target":    t.String(),
				"exit_code": result.ExitCode,
				"duration":  result.Duration,
			}).Info("invocation finished")

			if err := out.WriteResult(&result); err != nil {
				return err
			}
			if hookRunner != nil {
				hookRunner.Run(ctx, &result)
			}
			if resumeState != nil {
				resumeState.MarkCompleted(entry)
				if err := resumeState.Save(); err != nil {
					log.WithError(err).Warn("saving resume state")
				}
			}
		}
	}

	stats.Duration = time.Since(start)

	if ctx.Err() != nil {
		// Flush what finished so far; buffered reports would otherwise be empty.
		if err := out.WriteFooter(stats); err != nil {
			log.WithError(err).Warn("writing partial report")
		}
		if resumeState != nil {
			fmt.Fprintf(console, "\n[*] Progress saved to %s, resume with --resume-file\n", opts.ResumeFile)
		}
		return ctx.Err()
	}

	if resumeState != nil {
		_ = resumeState.Remove()
	}

	info(opts, "[+] Web enumeration and scanning completed.\n")
	return out.WriteFooter(stats)
}

// runInvocation runs one tool and reports the outcome on the console.
func runInvocation(ctx context.Context, toolRunner *tool.Runner, inv tool.Invocation, opts *config.Options) tool.Result {
	desc := inv.Description()
	info(opts, "[*] Running %s...\n", desc)
	logrus.WithField("command", strings.Join(inv.Command(), " ")).Debug("executing")

	result := toolRunner.Run(ctx, inv)
	if !result.OK() {
		if ctx.Err() == nil {
			fmt.Fprintf(console, "[!] Error during %s: %s\n", desc, result.ErrorMessage())
		}
		return result
	}

	info(opts, "[+] %s completed successfully.\n", desc)
	info(opts, "[+] Results saved to %s\n", inv.OutputFile)
	return result
}

// buildTools returns the tools run against each target, in order.
func buildTools(opts *config.Options) []tool.Tool {
	return []tool.Tool{
		tool.Gobuster(opts.GobusterBin, opts.Wordlist, opts.GobusterArgs...),
		tool.Nikto(opts.NiktoBin, opts.NiktoArgs...),
	}
}

// wordlistSize returns the number of wordlist entries, or -1 if the wordlist
// cannot be read. gobuster will fail on its own in that case, so it is only
// a warning here.
func wordlistSize(opts *config.Options) int {
	path := opts.Wordlist
	if path == "" {
		path = tool.DefaultWordlist
	}
	n, err := wordlist.Count(path)
	if err != nil {
		logrus.WithError(err).Warn("wordlist unavailable")
		fmt.Fprintf(console, "[!] Wordlist unavailable: %v\n", err)
		return -1
	}
	return n
}

func loadResume(opts *config.Options) (*resume.State, error) {
	if opts.ResumeFile == "" {
		return nil, nil
	}
	existing, err := resume.Load(opts.ResumeFile)
	if err != nil {
		return nil, fmt.Errorf("loading resume file: %w", err)
	}
	if existing != nil && existing.LogFile == opts.LogFile {
		info(opts, "[+] Resuming: %d invocations already completed\n", len(existing.Completed))
		return existing, nil
	}
	return resume.New(opts.ResumeFile, opts.LogFile), nil
}

func info(opts *config.Options, format string, args ...any) {
	if opts.Quiet {
		return
	}
	fmt.Fprintf(console, format, args...)
}

func printBanner(opts *config.Options, targetCount, wordlistCount int) {
	const (
		cyan   = "\033[36m"
		white  = "\033[97m"
		dim    = "\033[2m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)

	c, w, d, y, rs := cyan, white, dim, yellow, reset
	if opts.NoColor {
		c, w, d, y, rs = "", "", "", "", ""
	}

	fmt.Fprintf(console, `
%s                __                             %s
%s _    _____ ___/ /  ___ ___  __ ____ _        %s
%s| |/|/ / -_) _  /  / -_) _ \/ // /  ' \       %s
%s|__,__/\__/\_,_/   \__/_//_/\_,_/_/_/_/  %s %sv%s%s
%s                                               %s
%s    Web Enumeration Runner                     %s
%s    gobuster + nikto over scan logs            %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, strings.TrimPrefix(version.Version, "v"), rs,
		c, rs,
		w, rs,
		d, rs,
	)

	words := "unavailable"
	if wordlistCount >= 0 {
		words = fmt.Sprintf("%d entries", wordlistCount)
	}
	timeout := "none"
	if opts.ToolTimeout > 0 {
		timeout = opts.ToolTimeout.String()
	}

	fmt.Fprintf(console, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(console, "  %sLog file:%s     %s%s%s\n", d, rs, w, opts.LogFile, rs)
	fmt.Fprintf(console, "  %sTargets:%s      %s%d%s\n", d, rs, y, targetCount, rs)
	fmt.Fprintf(console, "  %sOutput:%s       %s%s%s\n", d, rs, w, opts.OutputDir, rs)
	fmt.Fprintf(console, "  %sWordlist:%s     %s%s%s\n", d, rs, w, words, rs)
	fmt.Fprintf(console, "  %sTimeout:%s      %s%s%s\n", d, rs, w, timeout, rs)
	fmt.Fprintf(console, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
