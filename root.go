package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gasladder/pkg/config"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	logLevel string
	noColor  bool
}

// globalState is everything a command touches outside its own flags, so
// tests can swap the filesystem, the environment and the output streams.
type globalState struct {
	ctx       context.Context
	fs        afero.Fs
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool
	lookupEnv func(string) (string, bool)
	logger    *logrus.Logger

	flags   globalFlags
	noColor bool
}

func newGlobalState(ctx context.Context) *globalState {
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	stderr := colorable.NewColorableStderr()
	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		stdout:    colorable.NewColorableStdout(),
		stderr:    stderr,
		stdoutTTY: stdoutTTY,
		lookupEnv: os.LookupEnv,
		logger: &logrus.Logger{
			Out:       stderr,
			Formatter: &logrus.TextFormatter{DisableColors: !stderrTTY},
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

// colorOutput reports whether stdout gets ANSI colors.
func (gs *globalState) colorOutput() bool {
	return gs.stdoutTTY && !gs.noColor
}

// flagGlobal returns the global settings given explicitly on the command
// line.
func (gs *globalState) flagGlobal(flags *pflag.FlagSet) config.Global {
	var g config.Global
	if flags.Changed("log-level") {
		g.LogLevel = &gs.flags.logLevel
	}
	if flags.Changed("no-color") {
		g.NoColor = &gs.flags.noColor
	}
	return g
}

func (gs *globalState) applyGlobal(g config.Global) error {
	if g.LogLevel != nil {
		lvl, err := logrus.ParseLevel(*g.LogLevel)
		if err != nil {
			return errors.Wrap(err, "log level")
		}
		gs.logger.SetLevel(lvl)
	}
	if g.NoColor != nil && *g.NoColor && !gs.noColor {
		gs.noColor = true
		gs.stdout = colorable.NewNonColorable(gs.stdout)
		gs.logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}
	return nil
}

type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	gen := newGenerateCmd(gs)
	c.cmd = &cobra.Command{
		Use:   "gasladder",
		Short: "generate GAS compare-and-branch ladders",
		Long: `gasladder emits a balanced binary search over an integer domain as
GNU assembler source. Each value is reached in at most ceil(log2(n))
comparisons, after which a per-value found action runs.

Without a subcommand, gasladder behaves like "gasladder generate".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		RunE:              gen.run,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())
	c.cmd.Flags().AddFlagSet(gen.flagSet())

	c.cmd.AddCommand(
		gen.command(),
		getCheckCmd(gs),
		getTreeCmd(gs),
		getTraceCmd(gs),
		getJumptableCmd(gs),
	)
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	envGlobal, _, err := config.FromEnv(c.gs.lookupEnv)
	if err != nil {
		return err
	}
	// https://no-color.org/: any value, even empty, disables color
	if _, ok := c.gs.lookupEnv("NO_COLOR"); ok && envGlobal.NoColor == nil {
		noColor := true
		envGlobal.NoColor = &noColor
	}
	if err := c.gs.applyGlobal(envGlobal.Apply(c.gs.flagGlobal(cmd.Flags()))); err != nil {
		return err
	}
	c.gs.logger.WithField("command", cmd.Name()).Debug("starting")
	return nil
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&c.gs.flags.logLevel, "log-level", "info", "log level: panic, fatal, error, warn, info, debug or trace")
	flags.BoolVar(&c.gs.flags.noColor, "no-color", false, "disable colored output")
	return flags
}

func execute() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gs := newGlobalState(ctx)
	if err := newRootCommand(gs).cmd.Execute(); err != nil {
		gs.logger.Error(err)
		return 1
	}
	return 0
}
