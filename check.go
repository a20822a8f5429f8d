package main

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gasladder/pkg/ladder"
	"gasladder/pkg/utils"
)

// ErrStale is returned by check when a file on disk no longer matches what
// its settings generate.
var ErrStale = errors.New("ladder file is stale")

func getCheckCmd(gs *globalState) *cobra.Command {
	var lf ladderFlags
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "verify generated files are up to date",
		Long: `Regenerate ladders and compare their xxhash digests with the files on
disk. With a file argument the single configured ladder is compared with
it; otherwise every ladder in the config that has an out path is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(gs, cmd.Flags(), lf.configPath, lf.changed(cmd.Flags()))
			if err != nil {
				return err
			}

			var paths []string
			var idx []int
			switch {
			case len(args) == 1:
				if len(cfg.Ladders) != 1 {
					return errors.Errorf("check %s: config has %d ladders, expected 1", args[0], len(cfg.Ladders))
				}
				paths, idx = []string{args[0]}, []int{0}
			default:
				for i, l := range cfg.Ladders {
					if out := l.OutPath(); out != "" {
						paths = append(paths, out)
						idx = append(idx, i)
					}
				}
				if len(paths) == 0 {
					return errors.New("nothing to check: pass a file or a config whose ladders set out")
				}
			}

			all := ladderOptions(gs, cfg)
			opts := make([]ladder.Options, len(idx))
			for i, j := range idx {
				opts[i] = all[j]
			}
			results, err := ladder.GenerateAll(gs.ctx, opts)
			if err != nil {
				return err
			}

			var stale []string
			for i, res := range results {
				data, ok, err := utils.ReadFile(gs.fs, paths[i])
				if err != nil {
					return err
				}
				log := gs.logger.WithFields(logrus.Fields{
					"ladder": ladderName(res, i),
					"path":   paths[i],
					"want":   fmt.Sprintf("%016x", res.Digest),
				})
				switch {
				case !ok:
					log.Warn("file missing")
					stale = append(stale, paths[i])
				case xxhash.Sum64(data) != res.Digest:
					log.WithField("have", fmt.Sprintf("%016x", xxhash.Sum64(data))).Warn("file is stale")
					stale = append(stale, paths[i])
				default:
					log.Info("up to date")
				}
			}
			if len(stale) > 0 {
				return errors.Wrap(ErrStale, strings.Join(stale, ", "))
			}
			return nil
		},
	}
	cmd.Flags().AddFlagSet(lf.flagSet())
	return cmd
}
