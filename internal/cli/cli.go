package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/sokinpui/docpanel/internal/config"
)

// ErrHelp is returned when -h or --help was given.
var ErrHelp = pflag.ErrHelp

// Flags holds all the command-line flag values.
type Flags struct {
	ConfigPath      string
	APIURL          string
	Host            string
	Listen          string
	File            string
	Write           bool
	IncludeDocument bool
	NoSelection     bool
	Timeout         time.Duration
	Check           bool
	Debug           bool
	Version         bool

	set *pflag.FlagSet
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := pflag.NewFlagSet("docpanel", pflag.ContinueOnError)
	fs.SetOutput(output)

	// Define flags
	fs.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: $XDG_CONFIG_HOME/docpanel/config.toml).")
	fs.StringVar(&f.APIURL, "api-url", "", "Base URL of the analysis service.")
	fs.StringVar(&f.Host, "host", "", "Document host: 'nvim' or 'clipboard'.")
	fs.StringVarP(&f.Listen, "listen", "l", "", "Neovim RPC address (default: $NVIM).")
	fs.StringVarP(&f.File, "file", "f", "", "Document file read by the clipboard host.")
	fs.BoolVarP(&f.Write, "write", "w", false, "Save the Neovim buffer after every edit.")
	fs.BoolVar(&f.IncludeDocument, "include-document", false, "Send the whole document as chat context by default.")
	fs.BoolVar(&f.NoSelection, "no-selection", false, "Do not send the selection with chat prompts by default.")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Timeout for analysis requests (e.g. '30s'; 0 keeps the configured value).")
	fs.BoolVar(&f.Check, "check", false, "Check the document host and configuration, then exit.")
	fs.BoolVar(&f.Debug, "debug", false, "Write a debug log to the state directory.")
	fs.BoolVar(&f.Version, "version", false, "Print the version and exit.")

	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: docpanel [flags]")
		fmt.Fprintln(output, "\nDocument analysis sidebar: summarize, compare, redraft and chat about the text")
		fmt.Fprintln(output, "selected in Neovim or on the clipboard.")
		fmt.Fprintln(output, "\nExample: docpanel --listen /tmp/nvim.sock --api-url http://localhost:8000")
		fmt.Fprintln(output, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("error: unexpected argument %q", fs.Arg(0))
	}
	f.set = fs

	// Validate flag combinations
	if f.Listen != "" && f.File != "" {
		return nil, errors.New("error: --listen and --file are mutually exclusive")
	}
	if f.Host != "" && f.Host != config.HostNvim && f.Host != config.HostClipboard {
		return nil, fmt.Errorf("error: --host must be %q or %q", config.HostNvim, config.HostClipboard)
	}
	if f.Host == config.HostNvim && f.File != "" {
		return nil, errors.New("error: --file only applies to the clipboard host")
	}
	if f.Host == config.HostClipboard && (f.Listen != "" || f.Write) {
		return nil, errors.New("error: --listen and --write only apply to the nvim host")
	}
	if f.Timeout < 0 {
		return nil, errors.New("error: --timeout must not be negative")
	}

	return f, nil
}

// MustParse parses os.Args, exiting on error. pflag already prints the
// error message.
func MustParse() *Flags {
	f, err := ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return f
}

func (f *Flags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// Apply overrides cfg with every flag that was given explicitly. --listen
// and --file select their host unless --host says otherwise.
func (f *Flags) Apply(cfg *config.Config) {
	if f.changed("api-url") {
		cfg.APIURL = f.APIURL
	}
	switch {
	case f.changed("host"):
		cfg.Host = f.Host
	case f.changed("listen"):
		cfg.Host = config.HostNvim
	case f.changed("file"):
		cfg.Host = config.HostClipboard
	}
	if f.changed("listen") {
		cfg.Nvim.Listen = f.Listen
	}
	if f.changed("write") {
		cfg.Nvim.Write = f.Write
	}
	if f.changed("file") {
		cfg.Clipboard.File = f.File
	}
	if f.changed("include-document") {
		cfg.Chat.IncludeDocument = f.IncludeDocument
	}
	if f.changed("no-selection") {
		cfg.Chat.IncludeSelection = !f.NoSelection
	}
	if f.changed("timeout") && f.Timeout > 0 {
		cfg.RequestTimeout = f.Timeout.String()
	}
	if f.Debug {
		cfg.Debug = true
	}
}
