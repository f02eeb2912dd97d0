// Package cli is the tada command line: a cobra command tree whose one-shot
// subcommands drive the same controllers as the interactive list.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const lsHint = "Hint: run `tada ls` to see valid indexes"

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tada",
		Short: "A todo list backed by a remote store",
		Long: `tada keeps a todo list on a remote store.
Run without arguments for the interactive list or use the sub-commands.`,
		Example: `
tada add "Buy milk" --priority high --due 2025-06-01
tada ls --filter active
tada done 2
tada serve --seed`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usagef("", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.apiURL, "api-url", "", "store base URL (env TADA_API_URL)")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "per-request timeout (env TADA_TIMEOUT)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error (env TADA_LOG_LEVEL)")
	pf.StringVar(&a.flags.theme, "theme", "", "classic, neon or mono (env TADA_THEME)")

	root.AddCommand(
		a.tuiCommand(),
		a.listCommand(),
		a.addCommand(),
		a.doneCommand(),
		a.removeCommand(),
		a.editCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	list, editor := a.controllers()
	return tui.Run(cmd.Context(), list, editor, a.logger)
}

func (a *app) listCommand() *cobra.Command {
	var (
		filter string
		group  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return usagef("", err)
			}
			list, _, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			list.SetFilter(f)
			renderList(list, group)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all, active or completed")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	var description, priority, due string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task (title can be multiple words)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := model.NewFields()
			f.Title = strings.Join(args, " ")
			f.Description = description
			var err error
			if f.Priority, err = model.ParsePriority(priority); err != nil {
				return err
			}
			if f.DueDate, err = model.ParseDate(due); err != nil {
				return err
			}
			// Validate before touching the network.
			if err := f.Normalize().Validate(); err != nil {
				return err
			}

			list, _ := a.controllers()
			it, err := list.Create(cmd.Context(), f)
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("added %q due %s", it.Title, it.DueDate.Display()))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "high, medium or low")
	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|index>",
		Short: "Toggle completion of a task",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			it, err := resolve(list, args[0])
			if err != nil {
				return err
			}
			it, err = list.ToggleCompleted(cmd.Context(), it.ID)
			if err != nil {
				return err
			}
			if it.Completed {
				ui.OK("completed " + it.Title)
			} else {
				ui.OK("reopened " + it.Title)
			}
			return nil
		},
	}
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|index>",
		Aliases: []string{"remove"},
		Short:   "Remove a task",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			it, err := resolve(list, args[0])
			if err != nil {
				return err
			}
			if err := list.Remove(cmd.Context(), it.ID); err != nil {
				return err
			}
			ui.OK("removed " + it.Title)
			return nil
		},
	}
}

func (a *app) editCommand() *cobra.Command {
	values := map[state.Field]*string{}
	flagName := map[state.Field]string{
		state.FieldTitle:       "title",
		state.FieldDescription: "description",
		state.FieldPriority:    "priority",
		state.FieldDueDate:     "due",
	}
	cmd := &cobra.Command{
		Use:   "edit <id|index>",
		Short: "Change the fields of a task",
		Example: `
tada edit 1 --title "Buy oat milk"
tada edit 3 --priority low --due 2025-07-01`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := false
			for _, field := range state.EditFields {
				changed = changed || cmd.Flags().Changed(flagName[field])
			}
			if !changed {
				return usagef("Hint: pass at least one of --title, --description, --priority, --due",
					errors.New("edit: nothing to change"))
			}

			list, editor, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			it, err := resolve(list, args[0])
			if err != nil {
				return err
			}
			editor.StartEditing(it)
			for _, field := range state.EditFields {
				if !cmd.Flags().Changed(flagName[field]) {
					continue
				}
				if err := editor.EditField(field, *values[field]); err != nil {
					return err
				}
			}
			saved, err := editor.Save(cmd.Context())
			if err != nil {
				return err
			}
			ui.OK("saved " + saved.Title)
			return nil
		},
	}
	usage := map[state.Field]string{
		state.FieldTitle:       "new title",
		state.FieldDescription: "new description",
		state.FieldPriority:    "high, medium or low",
		state.FieldDueDate:     "due date YYYY-MM-DD",
	}
	for _, field := range state.EditFields {
		values[field] = cmd.Flags().String(flagName[field], "", usage[field])
	}
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var (
		listen string
		origin string
		data   string
		seed   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo store server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = a.cfg.Listen
			}
			if !cmd.Flags().Changed("origin") {
				origin = a.cfg.AllowedOrigin
			}
			if !cmd.Flags().Changed("data") {
				data = a.cfg.DataFile
			}

			opts := []server.Option{server.WithLogger(a.logger)}
			if data != "" {
				opts = append(opts, server.WithPersister(jsonstore.New(data)))
			}
			srv, err := server.New(opts...)
			if err != nil {
				return err
			}
			if seed {
				if err := srv.Seed(); err != nil {
					return err
				}
			}
			return srv.ListenAndServe(cmd.Context(), listen, origin)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (env TADA_LISTEN)")
	cmd.Flags().StringVar(&origin, "origin", "", "CORS allowed origin, empty disables (env TADA_ALLOWED_ORIGIN)")
	cmd.Flags().StringVar(&data, "data", "", "JSON file to keep the todos in (env TADA_DATA_FILE)")
	cmd.Flags().BoolVar(&seed, "seed", false, "start with a sample task")
	return cmd
}

// resolve reads arg as a 1-based index into the loaded collection, or else as an id.
func resolve(list *state.ListController, arg string) (model.Item, error) {
	items := list.Items()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(items) {
			return model.Item{}, usagef(lsHint, fmt.Errorf("index out of range: have %d, got %d", len(items), n))
		}
		return items[n-1], nil
	}
	it, ok := list.Item(arg)
	if !ok {
		return model.Item{}, usagef(lsHint, fmt.Errorf("no task with id %q", arg))
	}
	return it, nil
}
