package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maxvaer/webenum/internal/config"
	"github.com/maxvaer/webenum/internal/logger"
	"github.com/maxvaer/webenum/internal/runner"
	"github.com/maxvaer/webenum/internal/tool"
	"github.com/maxvaer/webenum/pkg/version"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var configFile string

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"INPUT", []string{"log", "output"}},
	{"TOOLS", []string{"gobuster-bin", "wordlist", "gobuster-args", "nikto-bin", "nikto-args", "tool-timeout"}},
	{"OUTPUT", []string{"report", "format", "quiet", "no-color", "on-result"}},
	{"CONFIGURATION", []string{"config", "resume-file", "log-level", "debug-log"}},
}

var rootCmd = &cobra.Command{
	Use:     "webenum -l <log> -o <dir> [flags]",
	Short:   "Run gobuster and nikto against web services from a scan log",
	Version: version.Version,
	Long: `webenum reads a JSON or YAML port-scan log, picks every host/port tagged
as an http or https service, and runs a gobuster directory brute-force
followed by a nikto scan against each one. Results are written to
<output>/<tool>_<ip>_<port>.txt.`,
	Example: `  webenum -l scan.json -o results
  webenum -l hosts.yaml -o results/2024-06 -w /usr/share/wordlists/dirb/common.txt
  webenum -l scan.json -o results --tool-timeout 30m --report run.json --format json
  webenum -l scan.json -o results --resume-file run.state
  webenum -l scan.json -o results --on-result "notify-send '{tool} {url} {status}'"
  webenum -l scan.json -o results --config webenum.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(cmd.Flags(), configFile)
		if err != nil {
			return err
		}
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			opts.NoColor = true
		}
		if opts.NoColor {
			pterm.DisableColor()
		}

		closer, err := logger.Setup(logger.Config{
			Level:   opts.LogLevel,
			File:    opts.DebugLog,
			NoColor: opts.NoColor,
		})
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Input
	f.StringP("log", "l", "", "JSON or YAML scan `file` listing open ports")
	f.StringP("output", "o", "", "Directory to store scan results in")
	_ = rootCmd.MarkFlagRequired("log")
	_ = rootCmd.MarkFlagRequired("output")

	// Tools
	f.String("gobuster-bin", "gobuster", "gobuster executable `path`")
	f.StringP("wordlist", "w", tool.DefaultWordlist, "Wordlist `file` passed to gobuster")
	f.StringSlice("gobuster-args", nil, "Extra gobuster `args` (comma-separated)")
	f.String("nikto-bin", "nikto", "nikto executable `path`")
	f.StringSlice("nikto-args", nil, "Extra nikto `args` (comma-separated)")
	f.Duration("tool-timeout", 0, "Kill a tool after this long (unset waits indefinitely)")

	// Output
	f.String("report", "", "Write a run report to this `file` (stdout if unset)")
	f.String("format", "text", "Report `format`: text, json, csv")
	f.BoolP("quiet", "q", false, "Minimal output")
	f.Bool("no-color", false, "Disable colored output")
	f.String("on-result", "", "Shell `command` to run after each tool (receives JSON on stdin)")

	// Configuration
	f.StringVar(&configFile, "config", "", "YAML config `file` (flags override it)")
	f.String("resume-file", "", "Save progress to this `file` and skip what it lists on restart")
	f.String("log-level", "warn", "Diagnostic log `level`: debug, info, warn, error")
	f.String("debug-log", "", "Write diagnostic logs to this rotating `file` instead of stderr")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		writeFlagGroups(w, cmd.Flags())
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// writeFlagGroups prints helpGroups with descriptions aligned on the
// longest flag label of the whole set.
func writeFlagGroups(w io.Writer, flags *pflag.FlagSet) {
	width := 0
	for _, g := range helpGroups {
		for _, name := range g.flags {
			if f := flags.Lookup(name); f != nil {
				width = max(width, len(flagLabel(f)))
			}
		}
	}
	for _, g := range helpGroups {
		fmt.Fprintf(w, "\n%s:\n", g.title)
		for _, name := range g.flags {
			if f := flags.Lookup(name); f != nil {
				fmt.Fprintln(w, formatFlag(f, width))
			}
		}
	}
}

// formatFlag renders one help line, padding the label to width.
func formatFlag(f *pflag.Flag, width int) string {
	return fmt.Sprintf("  %-*s  %s", width, flagLabel(f), flagDescription(f))
}

// flagLabel returns "-s, --name value", where value comes from a
// backquoted word in the usage or the flag type. Bool flags take none.
func flagLabel(f *pflag.Flag) string {
	label := "    --" + f.Name
	if f.Shorthand != "" {
		label = "-" + f.Shorthand + ", --" + f.Name
	}
	if value, _ := pflag.UnquoteUsage(f); value != "" {
		label += " " + value
	}
	return label
}

func flagDescription(f *pflag.Flag) string {
	_, usage := pflag.UnquoteUsage(f)
	if _, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok {
		return usage + " [required]"
	}
	switch f.DefValue {
	case "", "false", "0", "0s", "[]":
		return usage
	}
	return fmt.Sprintf("%s [default: %s]", usage, f.DefValue)
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
                __
 _    _____ ___/ /  ___ ___  __ ____ _
| |/|/ / -_) _  /  / -_) _ \/ // /  ' \
|__,__/\__/\_,_/   \__/_//_/\_,_/_/_/_/   %s

`, ver)
}
