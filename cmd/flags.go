package cmd

import (
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command)

func addFlags(cmd *cobra.Command, flags ...funcFlag) {
	for _, f := range flags {
		f(cmd)
	}
}

func withTokensFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP(
		"with-tokens", "k", false,
		"print a status token per row instead of a progress bar",
	)
}

func forceBlankAuthorsFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP(
		"force-blank-authors", "f", true,
		"merge duplicates without authors even if GBIF cannot confirm them",
	)
}

func minRankFlag(cmd *cobra.Command) {
	cmd.Flags().IntP(
		"min-rank-id", "r", 0,
		"most inclusive rank id to scan (Genus = 180)",
	)
}

func batchSizeFlag(cmd *cobra.Command) {
	cmd.Flags().IntP(
		"batch-size", "b", 0,
		"number of nodes fetched per page",
	)
}

func kingdomFlag(cmd *cobra.Command) {
	cmd.Flags().String(
		"kingdom", "",
		"kingdom sent to GBIF with every name",
	)
}

func dataDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(
		"data-dir", "d", "",
		"directory with data files",
	)
}

func outputDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(
		"output-dir", "o", "",
		"directory for ambivalent cases",
	)
}

// flagOptions converts flags set on the command line to config options.
// Flags left at their defaults do not override the configuration.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	fs := cmd.Flags()

	if fs.Changed("with-tokens") {
		b, _ := fs.GetBool("with-tokens")
		res = append(res, config.OptImportWithTokens(&b))
	}
	if fs.Changed("force-blank-authors") {
		b, _ := fs.GetBool("force-blank-authors")
		res = append(res, config.OptDedupForceMergeBlankAuthors(&b))
	}
	if fs.Changed("min-rank-id") {
		i, _ := fs.GetInt("min-rank-id")
		res = append(res, config.OptDedupMinRankID(i))
	}
	if fs.Changed("batch-size") {
		i, _ := fs.GetInt("batch-size")
		res = append(res, config.OptDedupBatchSize(i))
	}
	if fs.Changed("kingdom") {
		s, _ := fs.GetString("kingdom")
		res = append(res, config.OptAuthorityKingdom(s))
	}
	if fs.Changed("data-dir") {
		s, _ := fs.GetString("data-dir")
		res = append(res, config.OptImportDataDir(s))
	}
	if fs.Changed("output-dir") {
		s, _ := fs.GetString("output-dir")
		res = append(res, config.OptImportOutputDir(s))
	}
	return res
}
