package cmd

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/sp7tree/internal/iogbif"
	"github.com/spf13/cobra"
)

// getMergePairsCmd returns the merge-pairs command.
func getMergePairsCmd() *cobra.Command {
	mergePairsCmd := &cobra.Command{
		Use:   "merge-pairs file",
		Short: "Merge taxa listed as from_id,to_id pairs",
		Long: `Merge taxa given by a data file with exactly two columns,
from_id and to_id. Every from_id node is merged into its to_id node, its
children and synonyms move to the target.

Rows with non-numeric ids are reported and skipped.

Examples:
  sp7tree merge-pairs reviewed_cases.csv`,
		Aliases: []string{"pairs"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMergePairs(cmd, args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	addFlags(mergePairsCmd, dataDirFlag)

	return mergePairsCmd
}

func runMergePairs(cmd *cobra.Command, file string) error {
	ctx := context.Background()
	s, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	m, err := iogbif.New(cfg)
	if err != nil {
		return err
	}
	engine, err := s.runner.NewEngine(ctx, m)
	if err != nil {
		return err
	}

	res, err := s.runner.MergePairs(ctx, engine, file)
	if err != nil {
		return err
	}
	gn.Info("Merged <em>%s</em> of %s pairs in %s, %s invalid rows, %s failed merges",
		humanize.Comma(int64(res.Merged)), humanize.Comma(int64(res.Rows)),
		gnfmt.TimeString(res.Duration.Seconds()),
		humanize.Comma(int64(res.Invalid)), humanize.Comma(int64(res.Failed)))
	return nil
}
