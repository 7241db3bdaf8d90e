package ioimport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/gnames/sp7tree/internal/iorows"
	"github.com/gnames/sp7tree/pkg/dedup"
)

// PairsSummary counts outcomes of a merge pairs file.
type PairsSummary struct {
	Rows     int
	Merged   int
	Invalid  int
	Failed   int
	Duration time.Duration
}

// MergePairs merges every from_id, to_id pair of a data file in the taxon
// tree. A file with other headers is rejected before anything is merged.
func (r *Runner) MergePairs(
	ctx context.Context,
	engine *dedup.Engine,
	path string,
) (PairsSummary, error) {
	var res PairsSummary
	start := time.Now()

	tbl, err := iorows.Read(r.DataPath(path))
	if err != nil {
		return res, err
	}
	if err = dedup.CheckPairHeaders(tbl.Headers); err != nil {
		return res, err
	}

	for i, row := range tbl.Rows {
		res.Rows++
		p, err := dedup.NewPairRow(row)
		if err != nil {
			res.Invalid++
			slog.Error("Invalid merge pair", "line", i+2, "error", err)
			fmt.Fprintf(r.out, "line %d: %s\n", i+2, err)
			continue
		}

		pr := engine.MergePair(ctx, p)
		fmt.Fprintf(r.out, "[%d -> %d]... [%d](%.2fs)\n",
			pr.FromID, pr.ToID, pr.Status, pr.Duration.Seconds())
		if pr.Err != nil {
			res.Failed++
			slog.Error("Merge failed", "from", pr.FromID, "to", pr.ToID,
				"status", pr.Status, "error", pr.Err)
			continue
		}
		res.Merged++
	}

	res.Duration = time.Since(start)
	slog.Info("Merge pairs finished", "rows", res.Rows, "merged", res.Merged,
		"invalid", res.Invalid, "failed", res.Failed,
		"duration", gnfmt.TimeString(res.Duration.Seconds()))
	return res, nil
}
