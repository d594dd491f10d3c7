package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sokinpui/docpanel/internal/app"
	"github.com/sokinpui/docpanel/internal/cli"
	"github.com/sokinpui/docpanel/internal/config"
	"github.com/sokinpui/docpanel/internal/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	flags := cli.MustParse()
	if flags.Version {
		fmt.Println("docpanel", version)
		return
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		ui.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	flags.Apply(cfg)

	a, err := app.New(cfg)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	// --check prints to stderr and does not start the TUI.
	if flags.Check {
		if failed := ui.PrintCheckSummary(a.Check(context.Background())); failed > 0 {
			a.Close()
			os.Exit(1)
		}
		return
	}

	if err := a.Run(); err != nil {
		a.Close()
		var detailed *app.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		ui.Error("Error running program: %v", err)
		os.Exit(1)
	}
}
