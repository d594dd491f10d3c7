package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

// Output is where all pre-TUI messages go.
var Output io.Writer = os.Stderr

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Output, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Output, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Output, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Output, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Output, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(Output, "  "+format+"\n", a...)
}

// --- Check summary ---

// CheckResult is one line of the --check report.
type CheckResult struct {
	Name   string
	Detail string
	Err    error
}

// PrintCheckSummary reports each check and returns the number that failed.
func PrintCheckSummary(results []CheckResult) int {
	Header("\n--- Check Summary ---")

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			Error("✗ %s: %v", r.Name, r.Err)
			continue
		}
		Success("✓ %s", r.Name)
		if r.Detail != "" {
			fmt.Fprintf(Output, "  - %s\n", r.Detail)
		}
	}

	if failed > 0 {
		Warning("%d of %d check(s) failed. The sidebar will start in degraded mode.", failed, len(results))
	} else {
		Info("All %d check(s) passed.", len(results))
	}
	return failed
}
