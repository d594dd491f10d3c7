package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func capture(t *testing.T) *strings.Builder {
	t.Helper()
	var out strings.Builder
	prevOut, prevNoColor := Output, color.NoColor
	Output, color.NoColor = &out, true
	t.Cleanup(func() { Output, color.NoColor = prevOut, prevNoColor })
	return &out
}

func TestPrintCheckSummary(t *testing.T) {
	out := capture(t)

	failed := PrintCheckSummary([]CheckResult{
		{Name: "config", Detail: "/home/u/.config/docpanel/config.toml"},
		{Name: "document host (nvim)", Err: errors.New("no Neovim address")},
	})

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	got := out.String()
	for _, want := range []string{"Check Summary", "✓ config", "config.toml", "✗ document host (nvim): no Neovim address", "1 of 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintCheckSummaryAllPassed(t *testing.T) {
	out := capture(t)

	if failed := PrintCheckSummary([]CheckResult{{Name: "analysis service"}}); failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}
	if !strings.Contains(out.String(), "All 1 check(s) passed.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPath(t *testing.T) {
	out := capture(t)
	Path("%s", "/tmp/debug.log")
	if got := out.String(); got != "  /tmp/debug.log\n" {
		t.Errorf("Path output = %q", got)
	}
}
