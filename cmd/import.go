package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/spf13/cobra"
)

// getImportCmd returns the import command.
func getImportCmd() *cobra.Command {
	var treeName string

	importCmd := &cobra.Command{
		Use:   "import file [file...]",
		Short: "Import tree nodes from CSV or XLSX files",
		Long: `Create missing nodes of a Specify tree from rows of data files.

Every header of a file has to be a rank name of the tree, optionally
decorated as <Rank>Author, Accepted<Rank>, Accepted<Rank>Author,
<Rank>TaxonKey or <Rank>TaxonKeySource, or one of isAccepted and isHybrid.
A file with an unknown header is rejected before any row is sent.

For every row the first filled rank column is found anywhere in the tree
(or created under the root), the rest of the path is found or created
under it. Rows with isAccepted=No are linked as synonyms of their
Accepted* names. Failed rows are logged and skipped.

Relative file names that do not exist are looked up in the data
directory.

Examples:
  sp7tree import taxa.csv
  sp7tree import -t storage boxes.xlsx
  sp7tree import --with-tokens taxa1.csv taxa2.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runImport(cmd, treeName, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	importCmd.Flags().StringVarP(
		&treeName, "tree", "t", tree.Taxon.String(),
		"tree type: taxon, storage or geography",
	)
	addFlags(importCmd, withTokensFlag, dataDirFlag)

	return importCmd
}

func runImport(cmd *cobra.Command, treeName string, files []string) error {
	tt, err := tree.NewType(treeName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	for _, f := range files {
		gn.Info("Importing <em>%s</em> into the %s tree...", f, tt)
		res, err := s.runner.Import(ctx, tt, f)
		if err != nil {
			return err
		}
		gn.Info("%s", res.String())
	}
	return nil
}
