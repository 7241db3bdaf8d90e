package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iogbif"
	"github.com/spf13/cobra"
)

// getDedupCmd returns the dedup command.
func getDedupCmd() *cobra.Command {
	var idsFile string

	dedupCmd := &cobra.Command{
		Use:   "dedup",
		Short: "Find and merge duplicate taxa",
		Long: `Scan the taxon tree rank by rank, from the deepest rank up to
min_rank_id, and merge taxa that share a full name.

Duplicates under different parents are reconciled with GBIF: a node is
moved under the parent GBIF knows, otherwise both nodes are reported.
Duplicates with different authors are merged only if GBIF confirms one
authorship. The node with an author, the older node or the node with
more children survives a merge.

Cases that need a human decision are saved to
merge_ambivalent_cases_<YYYYMMDDhhmm>.csv in the output directory.

Nodes listed in an ids file (one id per line, # starts a comment) are
checked before the scan.

Examples:
  sp7tree dedup
  sp7tree dedup --ids-file suspects.txt
  sp7tree dedup --min-rank-id 220 --force-blank-authors=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDedup(cmd, idsFile)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	dedupCmd.Flags().StringVarP(
		&idsFile, "ids-file", "i", "",
		"file with node ids to check before the scan",
	)
	addFlags(dedupCmd,
		forceBlankAuthorsFlag, minRankFlag, batchSizeFlag, kingdomFlag,
		dataDirFlag, outputDirFlag,
	)

	return dedupCmd
}

func runDedup(cmd *cobra.Command, idsFile string) error {
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

	gn.Info("Scanning the taxon tree for duplicates...")
	res, err := s.runner.Dedup(ctx, m, idsFile)
	gn.Info("%s", res.String())
	return err
}
