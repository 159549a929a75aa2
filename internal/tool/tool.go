package tool

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maxvaer/webenum/internal/target"
)

// DefaultWordlist is the gobuster wordlist used when none is configured.
const DefaultWordlist = "/usr/share/wordlists/dirbuster/directory-list-2.3-medium.txt"

// Tool describes an external scanner and how it is told about a target.
type Tool struct {
	Name       string   // used in output file names and messages
	Binary     string   // executable name or path
	Args       []string // fixed arguments placed before the target flag
	TargetFlag string   // flag that precedes the target URL
}

// Gobuster returns the directory brute-forcer in dir mode.
func Gobuster(binary, wordlist string, extra ...string) Tool {
	if binary == "" {
		binary = "gobuster"
	}
	if wordlist == "" {
		wordlist = DefaultWordlist
	}
	args := append([]string{"dir", "-w", wordlist}, extra...)
	return Tool{Name: "gobuster", Binary: binary, Args: args, TargetFlag: "-u"}
}

// Nikto returns the web vulnerability scanner.
func Nikto(binary string, extra ...string) Tool {
	if binary == "" {
		binary = "nikto"
	}
	return Tool{Name: "nikto", Binary: binary, Args: extra, TargetFlag: "-h"}
}

// Title returns the tool name with its first letter upper-cased.
func (t Tool) Title() string {
	if t.Name == "" {
		return ""
	}
	return strings.ToUpper(t.Name[:1]) + t.Name[1:]
}

// Invocation is one run of a tool against one target.
type Invocation struct {
	Tool       Tool
	Target     target.Target
	Protocol   string
	URL        string
	OutputFile string
}

// NewInvocation builds the invocation of tool against t, writing to
// <outputDir>/<tool>_<ip>_<port>.txt.
func NewInvocation(tool Tool, t target.Target, outputDir string) Invocation {
	return Invocation{
		Tool:       tool,
		Target:     t,
		Protocol:   t.Scheme(),
		URL:        t.URL(),
		OutputFile: filepath.Join(outputDir, OutputName(tool.Name, t)),
	}
}

// OutputName returns <tool>_<ip>_<port>.txt.
func OutputName(tool string, t target.Target) string {
	return tool + "_" + t.IP + "_" + strconv.Itoa(t.Port) + ".txt"
}

// Description is the human-readable label used in status messages.
func (inv Invocation) Description() string {
	return fmt.Sprintf("%s on %s", inv.Tool.Title(), inv.URL)
}

// Command returns the full argv, binary first.
func (inv Invocation) Command() []string {
	argv := make([]string, 0, len(inv.Tool.Args)+5)
	argv = append(argv, inv.Tool.Binary)
	argv = append(argv, inv.Tool.Args...)
	return append(argv, inv.Tool.TargetFlag, inv.URL, "-o", inv.OutputFile)
}
