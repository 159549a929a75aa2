package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// WEBENUM_GOBUSTER_BIN.
const EnvPrefix = "WEBENUM"

// Options holds all configuration for a webenum run.
type Options struct {
	// Input
	LogFile   string
	OutputDir string

	// Tools
	GobusterBin  string
	GobusterArgs []string
	Wordlist     string
	NiktoBin     string
	NiktoArgs    []string
	ToolTimeout  time.Duration // 0 = no timeout

	// Output
	ReportFile   string
	ReportFormat string // "text", "json", "csv"
	Quiet        bool
	NoColor      bool

	// Hooks and resume
	OnResultCmd string
	ResumeFile  string

	// Diagnostics
	LogLevel string
	DebugLog string // rotating diagnostics file, empty = stderr
}

// Load resolves options from flags, an optional YAML config file and
// WEBENUM_* environment variables. Flags set on the command line take
// precedence, then environment, then the config file, then flag defaults.
func Load(flags *pflag.FlagSet, configFile string) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	opts := &Options{
		LogFile:      v.GetString("log"),
		OutputDir:    v.GetString("output"),
		GobusterBin:  v.GetString("gobuster-bin"),
		GobusterArgs: v.GetStringSlice("gobuster-args"),
		Wordlist:     v.GetString("wordlist"),
		NiktoBin:     v.GetString("nikto-bin"),
		NiktoArgs:    v.GetStringSlice("nikto-args"),
		ToolTimeout:  v.GetDuration("tool-timeout"),
		ReportFile:   v.GetString("report"),
		ReportFormat: strings.ToLower(v.GetString("format")),
		Quiet:        v.GetBool("quiet"),
		NoColor:      v.GetBool("no-color"),
		OnResultCmd:  v.GetString("on-result"),
		ResumeFile:   v.GetString("resume-file"),
		LogLevel:     v.GetString("log-level"),
		DebugLog:     v.GetString("debug-log"),
	}
	return opts, opts.Validate()
}

// Validate checks option combinations that flags alone cannot express.
func (o *Options) Validate() error {
	if o.LogFile == "" {
		return fmt.Errorf("log file required: use -l/--log")
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output directory required: use -o/--output")
	}
	switch o.ReportFormat {
	case "", "text", "json", "csv":
	default:
		return fmt.Errorf("--format must be one of: text, json, csv")
	}
	if o.ToolTimeout < 0 {
		return fmt.Errorf("--tool-timeout must not be negative")
	}
	return nil
}
