package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks a mistake on the command line rather than a failure at run time.
type usageError struct {
	err  error
	hint string
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(hint string, err error) error {
	return &usageError{err: err, hint: hint}
}

// usageArgs tags cobra's positional-argument failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usagef("", err)
		}
		return nil
	}
}

// Run executes the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string) int {
	a := &app{}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(ui.Stdout)
	root.SetErr(ui.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(err.Error())
	var ue *usageError
	if errors.As(err, &ue) {
		if ue.hint != "" {
			ui.Hint(ue.hint)
		}
		return ExitUsage
	}
	if model.IsValidation(err) {
		return ExitUsage
	}
	return ExitError
}

// rootFlags override the environment for one invocation.
type rootFlags struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
	theme    string
}

// app carries what every subcommand shares once setup has run.
type app struct {
	flags  rootFlags
	cfg    *config.Config
	logger *log.Logger
	closer io.Closer
}

// setup resolves configuration and logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return usagef("", err)
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = a.flags.apiURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.flags.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("theme") {
		cfg.Theme = a.flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return usagef("", err)
	}
	if err := ui.SetTheme(cfg.Theme); err != nil {
		return usagef("", err)
	}
	a.cfg = cfg

	switch {
	case cfg.LogFile != "":
		logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		a.logger, a.closer = logger, closer
	case cmd.Name() == "tui" || cmd.Name() == "tada":
		// Anything written to the terminal would tear the alternate screen.
		a.logger = logging.Discard()
	default:
		a.logger = logging.New(ui.Stderr, cfg.LogLevel, cfg.LogFormat)
	}
	a.logger.Debug("config", "api", cfg.GetAPIBaseURL(), "timeout", cfg.Timeout, "theme", cfg.Theme)
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// controllers wires a remote client into fresh list and edit controllers.
func (a *app) controllers() (*state.ListController, *state.ItemEditController) {
	client := remote.NewClient(a.cfg, a.logger)
	list := state.NewListController(client, a.logger)
	return list, state.NewItemEditController(list)
}

// loaded returns controllers holding the store's current collection.
func (a *app) loaded(ctx context.Context) (*state.ListController, *state.ItemEditController, error) {
	list, editor := a.controllers()
	if err := list.Load(ctx); err != nil {
		return nil, nil, err
	}
	return list, editor, nil
}
