package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gasladder/pkg/config"
	"gasladder/pkg/ladder"
	"gasladder/pkg/utils"
)

// ladderFlags are the per-ladder flags shared by the commands that build a
// ladder.
type ladderFlags struct {
	min        int
	max        int
	register   string
	found      string
	rawFound   bool
	labelBase  int
	configPath string
}

func (lf *ladderFlags) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.IntVar(&lf.min, "min", ladder.DefaultDomain.Min, "lowest value of the domain")
	flags.IntVar(&lf.max, "max", ladder.DefaultDomain.Max, "highest value of the domain")
	flags.StringVarP(&lf.register, "register", "r", ladder.DefaultRegister, "register compared against each pivot")
	flags.StringVar(&lf.found, "found", ladder.DefaultFound, "found action, a text/template over .Value .ID and .Register; literal {{ needs --raw-found")
	flags.BoolVar(&lf.rawFound, "raw-found", false, "emit the found action verbatim instead of as a template")
	flags.IntVar(&lf.labelBase, "label-base", 0, "offset added to every numeric local label")
	flags.StringVarP(&lf.configPath, "config", "c", "", "YAML config file")
	_ = cobra.MarkFlagFilename(flags, "config", "yaml", "yml")
	return flags
}

// changed returns only the flags given explicitly, so they override the
// config file and environment without clobbering them with defaults.
func (lf *ladderFlags) changed(flags *pflag.FlagSet) config.Ladder {
	var l config.Ladder
	if flags.Changed("min") {
		l.Min = &lf.min
	}
	if flags.Changed("max") {
		l.Max = &lf.max
	}
	if flags.Changed("register") {
		l.Register = &lf.register
	}
	if flags.Changed("found") {
		l.Found = &lf.found
	}
	if flags.Changed("raw-found") {
		l.RawFound = &lf.rawFound
	}
	if flags.Changed("label-base") {
		l.LabelBase = &lf.labelBase
	}
	return l
}

// loadConfig consolidates defaults, the config file, the environment and
// the explicit flags, applies the global settings and validates the result.
// Relative out paths in the file are taken relative to the file.
func loadConfig(gs *globalState, flags *pflag.FlagSet, configPath string, overrides config.Ladder) (config.Config, error) {
	var file config.File
	if configPath != "" {
		full, dir, err := utils.GetPathInfo(configPath)
		if err != nil {
			return config.Config{}, err
		}
		if file, err = config.Load(gs.fs, full); err != nil {
			return config.Config{}, err
		}
		for i, l := range file.Ladders {
			if l.Out != nil {
				out := utils.ResolveRelative(dir, *l.Out)
				file.Ladders[i].Out = &out
			}
		}
		gs.logger.WithField("path", full).Debug("config file loaded")
	}

	envGlobal, env, err := config.FromEnv(gs.lookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Consolidate(file, envGlobal, env, gs.flagGlobal(flags), overrides)
	if err := gs.applyGlobal(cfg.Global); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ladderOptions(gs *globalState, cfg config.Config) []ladder.Options {
	opts := make([]ladder.Options, len(cfg.Ladders))
	for i, l := range cfg.Ladders {
		opts[i] = l.Options(gs.logger)
	}
	return opts
}

func ladderName(res *ladder.Result, i int) string {
	if res.Name != "" {
		return res.Name
	}
	if i == 0 {
		return "ladder"
	}
	return "ladder #" + strconv.Itoa(i)
}
