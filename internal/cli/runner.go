package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/names/internal/config"
	"github.com/idilsaglam/names/internal/store"
	"github.com/idilsaglam/names/internal/ui"
)

// Options redirect output, mostly for tests. Nil means the terminal.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
}

// usageError marks bad invocations (exit code 2).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// usage wraps an argument validator so its failures count as usage errors.
func usage(v cobra.PositionalArgs, synopsis string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usagef("usage: %s", synopsis)
		}
		return nil
	}
}

// app is the state shared by every subcommand.
type app struct {
	stdout, stderr io.Writer

	configPath string
	dbPath     string
	theme      string
	filterMode string
	logLevel   string
	logFile    string
	color      bool
	noColor    bool
	save       bool

	cfgPath string
	cfg     config.Config
	log     *slog.Logger
	closers []func() error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	a := &app{stdout: opt.Stdout, stderr: opt.Stderr}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	ui.SetOutput(opt.Stdout, opt.Stderr)
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.As(err, new(usageError)):
		ui.Fail(err.Error())
		return 2
	default:
		ui.Fail(err.Error())
		return 1
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "names",
		Short: "A searchable list of names and descriptions",
		Long: `names keeps short name/description records in an embedded database.

Without a subcommand it opens the interactive list: type / to search,
a to add, enter to edit, d to delete and q to quit.`,
		Args:              usage(cobra.NoArgs, "names [command]"),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		RunE:              func(cmd *cobra.Command, _ []string) error { return a.runTUI(cmd.Context()) },
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/names/config.yaml)")
	f.StringVar(&a.dbPath, "db", "", "database path (overrides config and $"+config.EnvDB+")")
	f.StringVar(&a.theme, "theme", "", "output theme: "+strings.Join(ui.Themes, ", "))
	f.StringVar(&a.filterMode, "filter-mode", "", "search predicate: literal or simplified")
	f.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.logFile, "log-file", "", "write logs to this file (the interactive list logs nowhere otherwise)")
	f.BoolVar(&a.color, "color", false, "force colored output")
	f.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings, or write them to the config file",
		Args:  usage(cobra.NoArgs, "names config [--save]"),
		RunE:  func(*cobra.Command, []string) error { return a.doConfig() },
	}
	configCmd.Flags().BoolVar(&a.save, "save", false, "write the effective settings to the config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive list",
			Args:  usage(cobra.NoArgs, "names tui"),
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.runTUI(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "ls [query...]",
			Short: "List names, optionally filtered",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.doList(cmd.Context(), strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "add <name> <description>",
			Short: "Add a name",
			Args:  usage(cobra.ExactArgs(2), "names add <name> <description>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.doAdd(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "edit <index> <name> <description>",
			Short: "Replace the name and description at a 1-based index",
			Args:  usage(cobra.ExactArgs(3), "names edit <index> <name> <description>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := parseIndex("edit", args[0])
				if err != nil {
					return err
				}
				return a.doEdit(cmd.Context(), n, args[1], args[2])
			},
		},
		&cobra.Command{
			Use:     "rm <index>",
			Aliases: []string{"delete"},
			Short:   "Remove the name at a 1-based index",
			Args:    usage(cobra.ExactArgs(1), "names rm <index>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := parseIndex("rm", args[0])
				if err != nil {
					return err
				}
				return a.doRemove(cmd.Context(), n)
			},
		},
		&cobra.Command{
			Use:   "watch [query...]",
			Short: "Print changes to the (filtered) list as they happen",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.doWatch(cmd.Context(), strings.Join(args, " "))
			},
		},
		configCmd,
	)
	return root
}

func parseIndex(cmd, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("%s: not a number: %s", cmd, s)
	}
	return n, nil
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = a.dbPath
	}
	if flags.Changed("theme") {
		cfg.Theme = a.theme
	}
	if flags.Changed("filter-mode") {
		cfg.FilterMode = a.filterMode
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	a.cfgPath = path
	a.cfg = cfg
	ui.SetColorForcing(a.color, a.noColor)
	ui.SetTheme(cfg.Theme)

	level, _ := cfg.Level()
	var w io.Writer = a.stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		w = f
	} else if cmd.Name() == "names" || cmd.Name() == "tui" {
		// The alternate screen owns the terminal.
		w = io.Discard
	}
	a.log = newLogger(w, level)
	slog.SetDefault(a.log)
	a.log.Debug("config loaded", "path", path, "db", cfg.DB, "filter_mode", cfg.FilterMode)
	return nil
}

// openStore opens the configured database, creating its directory.
func (a *app) openStore(watch bool) (*store.Store, error) {
	if a.cfg.DB != store.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(a.cfg.DB), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	s, err := store.Open(a.cfg.DB, store.Options{Watch: watch, Logger: a.log})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("close", "err", err)
		}
	}
	a.closers = nil
}
