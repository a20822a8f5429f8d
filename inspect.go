package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gasladder/pkg/jumptable"
	"gasladder/pkg/ladder"
	"gasladder/pkg/utils"
)

func getTreeCmd(gs *globalState) *cobra.Command {
	var lf ladderFlags
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "print the comparison tree",
		Long: `Print the comparison tree of each configured ladder. Every line shows
the node identifier, its pivot and the interval it covers; edges are
labeled with the branch that reaches the child.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(gs, cmd.Flags(), lf.configPath, lf.changed(cmd.Flags()))
			if err != nil {
				return err
			}
			results, err := ladder.GenerateAll(gs.ctx, ladderOptions(gs, cfg))
			if err != nil {
				return err
			}
			for i, res := range results {
				if len(results) > 1 {
					fmt.Fprintf(gs.stdout, "%s:\n", ladderName(res, i))
				}
				fmt.Fprint(gs.stdout, res.Program.Tree().String())
			}
			return nil
		},
	}
	cmd.Flags().AddFlagSet(lf.flagSet())
	return cmd
}

// tracePalette colors trace output. Colors are forced on or off explicitly
// because stdout is not always the process's stdout.
type tracePalette struct {
	value, pivot, branch, hit, miss *color.Color
}

func newTracePalette(enabled bool) tracePalette {
	p := tracePalette{
		value:  color.New(color.Bold),
		pivot:  color.New(color.FgCyan),
		branch: color.New(color.FgYellow),
		hit:    color.New(color.FgGreen),
		miss:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.value, p.pivot, p.branch, p.hit, p.miss} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p tracePalette) format(t ladder.Trace) string {
	var sb strings.Builder
	sb.WriteString(p.value.Sprintf("%d:", t.Value))
	for _, s := range t.Steps {
		sb.WriteString(" ")
		sb.WriteString(p.pivot.Sprintf("%d", s.Pivot))
		if s.Branch != "" {
			sb.WriteString(" ")
			sb.WriteString(p.branch.Sprint(s.Branch))
		}
	}
	sb.WriteString(" => ")
	if t.Matched {
		sb.WriteString(p.hit.Sprintf("found at node %d", t.Final()))
	} else {
		sb.WriteString(p.miss.Sprint("not in domain"))
	}
	return sb.String()
}

func getTraceCmd(gs *globalState) *cobra.Command {
	var lf ladderFlags
	cmd := &cobra.Command{
		Use:   "trace value...",
		Short: "show the comparisons each value goes through",
		Long: `Follow each value through the ladder the way the generated code
would: every compared pivot is listed with the branch taken from it, and
the line ends at the node whose found action runs.`,
		Example: `  gasladder trace --max 15 0 7 15`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]int, len(args))
			for i, a := range args {
				v, err := strconv.Atoi(a)
				if err != nil {
					return errors.Errorf("invalid value %q", a)
				}
				values[i] = v
			}

			cfg, err := loadConfig(gs, cmd.Flags(), lf.configPath, lf.changed(cmd.Flags()))
			if err != nil {
				return err
			}
			if len(cfg.Ladders) != 1 {
				return errors.Errorf("trace needs exactly one ladder, config has %d", len(cfg.Ladders))
			}
			res, err := ladder.Generate(cfg.Ladders[0].Options(gs.logger))
			if err != nil {
				return err
			}

			palette := newTracePalette(gs.colorOutput())
			for _, v := range values {
				fmt.Fprintln(gs.stdout, palette.format(res.Program.Trace(v)))
			}
			return nil
		},
	}
	cmd.Flags().AddFlagSet(lf.flagSet())
	return cmd
}

func getJumptableCmd(gs *globalState) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "jumptable variant",
		Short:     "write a relative jump table for the GAS macro library",
		Long:      "Write one of the fixed jump tables. Known variants: " + strings.Join(jumptable.Names(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: jumptable.Names(),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := jumptable.Lookup(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return jumptable.Generate(gs.stdout, v)
			}
			var sb strings.Builder
			if err := jumptable.Generate(&sb, v); err != nil {
				return err
			}
			if err := utils.WriteFile(gs.fs, out, []byte(sb.String())); err != nil {
				return err
			}
			gs.logger.WithField("variant", v.Name).WithField("out", out).Info("jump table written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
