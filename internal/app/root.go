package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/output"
	"github.com/optipresta/optipresta/internal/session"
	"github.com/optipresta/optipresta/internal/store"
)

var storeFactory = store.Open

type globalOptions struct {
	JSON          bool
	JSONL         bool
	Plain         bool
	Fields        string
	Quiet         bool
	Verbose       bool
	NoInput       bool
	NoAuth        bool
	Profile       string
	Config        string
	Store         string
	StorePath     string
	TZ            string
	SchemaVersion string

	SessionPath     string
	ExtractEndpoint string
	ExtractAPIKey   string
	Username        string
	PasswordHash    string
	Listen          string
}

func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		renderTopLevelError(cmd, err)
	}
	return ExitCode(err)
}

func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{
		Profile:       "default",
		Store:         "json",
		SchemaVersion: contract.SchemaVersion,
		Listen:        "127.0.0.1:8990",
	}

	root := &cobra.Command{
		Use:           "optipresta",
		Short:         "Manage prestation sheets and the daily service views from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       BuildVersionString(),
	}
	root.SetVersionTemplate("optipresta {{.Version}}\n")

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output structured JSON")
	root.PersistentFlags().BoolVar(&opts.JSONL, "jsonl", false, "Output newline-delimited JSON")
	root.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Output stable plain text")
	root.PersistentFlags().StringVar(&opts.Fields, "fields", "", "Projected fields, comma-separated")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Reduce success output")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose diagnostics")
	root.PersistentFlags().BoolVar(&opts.NoInput, "no-input", false, "Disable prompts")
	root.PersistentFlags().BoolVar(&opts.NoAuth, "no-auth", false, "Skip the login gate")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "default", "Config profile")
	root.PersistentFlags().StringVar(&opts.Config, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.Store, "store", "json", "Store backend: json|sqlite")
	root.PersistentFlags().StringVar(&opts.StorePath, "store-path", "", "Store file path")
	root.PersistentFlags().StringVar(&opts.TZ, "tz", "", "IANA timezone for date resolution")
	root.PersistentFlags().StringVar(&opts.SchemaVersion, "schema-version", contract.SchemaVersion, "Output schema version")

	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newEventsCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newPlanningCmd(opts))
	root.AddCommand(newJournalCmd(opts))
	root.AddCommand(newCuisineCmd(opts))
	root.AddCommand(newRestaurantCmd(opts))
	root.AddCommand(newHousekeepingCmd(opts))
	root.AddCommand(newSallesCmd(opts))
	root.AddCommand(newWeeklyCmd(opts))
	root.AddCommand(newDatesCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newHashPasswordCmd(opts))
	root.AddCommand(newCompletionCmd(root))

	return root, opts
}

// buildPrinter resolves options and constructs the printer without
// touching the store or the session gate. Auth commands and version use
// it directly.
func buildPrinter(cmd *cobra.Command, opts *globalOptions, command string) (output.Printer, *globalOptions, error) {
	resolved, err := resolveGlobalOptions(cmd, opts)
	if err != nil {
		return output.Printer{}, nil, Wrap(2, err)
	}
	if conflictCount(resolved.JSON, resolved.JSONL, resolved.Plain) > 1 {
		return output.Printer{}, nil, Wrap(2, errors.New("--json, --jsonl, and --plain are mutually exclusive"))
	}
	mode := output.ModeAuto
	if resolved.JSON {
		mode = output.ModeJSON
	} else if resolved.JSONL {
		mode = output.ModeJSONL
	} else if resolved.Plain {
		mode = output.ModePlain
	}
	printer := output.Printer{
		Mode:          mode,
		Command:       command,
		Fields:        splitCSV(resolved.Fields),
		Quiet:         resolved.Quiet,
		SchemaVersion: resolved.SchemaVersion,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
	}
	if resolved.Verbose {
		_, _ = fmt.Fprintf(printer.Err, "optipresta: command=%s store=%s path=%s mode=%s profile=%s\n",
			command, resolved.Store, resolved.StorePath, mode, resolved.Profile)
	}
	return printer, resolved, nil
}

// buildContext is buildPrinter plus the session gate and an opened
// store. Every data command goes through here.
func buildContext(cmd *cobra.Command, opts *globalOptions, command string) (output.Printer, store.Store, *globalOptions, error) {
	printer, resolved, err := buildPrinter(cmd, opts, command)
	if err != nil {
		return output.Printer{}, nil, nil, err
	}
	if err := requireSession(printer, resolved); err != nil {
		return printer, nil, nil, err
	}
	st, err := storeFactory(resolved.Store, resolved.StorePath)
	if err != nil {
		_ = printer.Error(contract.ErrStoreUnavailable, err.Error(), "Check --store and --store-path")
		return printer, nil, nil, WrapPrinted(6, err)
	}
	return printer, st, resolved, nil
}

func requireSession(p output.Printer, ro *globalOptions) error {
	if ro.NoAuth {
		return nil
	}
	st, err := session.Load(ro.SessionPath)
	if err != nil {
		return failWithHint(p, contract.ErrUnauthenticated, err, "Remove the session file and log in again", 3)
	}
	if st == nil {
		err := errors.New("not logged in")
		return failWithHint(p, contract.ErrUnauthenticated, err, "Run `optipresta login` first, or pass --no-auth", 3)
	}
	return nil
}

func renderTopLevelError(cmd *cobra.Command, err error) {
	var appErr AppError
	if errors.As(err, &appErr) && appErr.Printed {
		return
	}
	if wantsStructuredErrorOutput(os.Args[1:]) {
		printer := output.Printer{
			Mode:          output.ModeJSON,
			SchemaVersion: contract.SchemaVersion,
			Err:           cmd.ErrOrStderr(),
		}
		_ = printer.Error(errorCodeForExit(ExitCode(err)), err.Error(), "")
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err.Error())
}

func wantsStructuredErrorOutput(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--json", arg == "--jsonl":
			return true
		case strings.HasPrefix(arg, "--json="), strings.HasPrefix(arg, "--jsonl="):
			return true
		}
	}
	return false
}

func failWithHint(printer output.Printer, code contract.ErrorCode, err error, hint string, exitCode int) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	_ = printer.Error(code, err.Error(), hint)
	return WrapPrinted(exitCode, err)
}

func defaultStorePath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "optipresta", "events.json")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return "events.json"
	}
	return filepath.Join(home, ".local", "share", "optipresta", "events.json")
}

func readTextInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func stdinInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func promptConfirmID(in io.Reader, out io.Writer, expected string) (bool, error) {
	if _, err := fmt.Fprintf(out, "Type event ID to confirm delete: "); err != nil {
		return false, err
	}
	var entered string
	if _, err := fmt.Fscanln(in, &entered); err != nil {
		return false, err
	}
	return strings.TrimSpace(entered) == strings.TrimSpace(expected), nil
}

func conflictCount(vals ...bool) int {
	total := 0
	for _, v := range vals {
		if v {
			total++
		}
	}
	return total
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
