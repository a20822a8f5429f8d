package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gasladder/pkg/ladder"
	"gasladder/pkg/utils"
)

type generateCmd struct {
	gs    *globalState
	lf    ladderFlags
	out   string
	stage string
}

func newGenerateCmd(gs *globalState) *generateCmd {
	return &generateCmd{gs: gs}
}

func (g *generateCmd) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "write a ladder as GAS source",
		Long: `Generate a compare-and-branch ladder for every value in [min, max].

Settings come from, in increasing precedence: built-in defaults, the
--config file, GASLADDER_* environment variables and explicit flags. A
config file may list several ladders; they are generated concurrently and
written in order.`,
		Example: `  gasladder generate --max 15 --register ecx
  gasladder generate --found 'insert_byte {{.Value}},\c' --out insert.S
  gasladder generate --config ladders.yaml`,
		Args: cobra.NoArgs,
		RunE: g.run,
	}
	cmd.Flags().AddFlagSet(g.flagSet())
	return cmd
}

func (g *generateCmd) flagSet() *pflag.FlagSet {
	flags := g.lf.flagSet()
	flags.StringVarP(&g.out, "out", "o", "", "output file (default stdout)")
	flags.StringVar(&g.stage, "stage", ladder.StageResolved.String(), "stop after this resolution stage: deferred, marked or resolved")
	return flags
}

func (g *generateCmd) run(cmd *cobra.Command, _ []string) error {
	stage, ok := ladder.ParseStage(g.stage)
	if !ok {
		return errors.Errorf("unknown stage %q", g.stage)
	}

	overrides := g.lf.changed(cmd.Flags())
	if cmd.Flags().Changed("out") {
		overrides.Out = &g.out
	}
	cfg, err := loadConfig(g.gs, cmd.Flags(), g.lf.configPath, overrides)
	if err != nil {
		return err
	}

	results, err := ladder.GenerateAllStage(g.gs.ctx, ladderOptions(g.gs, cfg), stage)
	if err != nil {
		return err
	}

	for i, res := range results {
		out := cfg.Ladders[i].OutPath()
		if out == "" {
			if _, err := io.WriteString(g.gs.stdout, res.Text); err != nil {
				return errors.Wrap(err, "write stdout")
			}
		} else if err := utils.WriteFile(g.gs.fs, out, []byte(res.Text)); err != nil {
			return err
		}

		st := res.Program.Stats()
		dest := out
		if dest == "" {
			dest = "stdout"
		}
		g.gs.logger.WithFields(logrus.Fields{
			"ladder": ladderName(res, i),
			"out":    dest,
			"stage":  stage,
			"nodes":  st.Nodes,
			"depth":  st.MaxDepth,
			"size":   humanize.Bytes(uint64(len(res.Text))),
			"digest": fmt.Sprintf("%016x", res.Digest),
		}).Info("ladder written")
	}
	return nil
}
