package ioimport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/sp7tree/internal/ioexport"
	"github.com/gnames/sp7tree/pkg/authority"
	"github.com/gnames/sp7tree/pkg/dedup"
	"github.com/gnames/sp7tree/pkg/status"
	"github.com/gnames/sp7tree/pkg/tree"
)

// DedupSummary is the outcome of a duplicate scan.
type DedupSummary struct {
	dedup.Stats

	// CasesFile is the path of saved ambivalent cases, empty if none.
	CasesFile string

	// Cases is the number of saved ambivalent cases.
	Cases    int
	Duration time.Duration
}

func (s DedupSummary) String() string {
	res := fmt.Sprintf(
		"Handled %s nodes in %s: %s duplicates, %s merged, %s moved, %s errors",
		humanize.Comma(int64(s.Handled)),
		gnfmt.TimeString(s.Duration.Seconds()),
		humanize.Comma(int64(s.Duplicates)),
		humanize.Comma(int64(s.Merged)),
		humanize.Comma(int64(s.Moved)),
		humanize.Comma(int64(s.Errors)),
	)
	if s.CasesFile != "" {
		res += fmt.Sprintf("\n%s ambivalent cases saved to %s",
			humanize.Comma(int64(s.Cases)), s.CasesFile)
	}
	return res
}

// NewEngine loads the taxon ranks of the collection and creates a dedup
// engine that writes status tokens to the output of the runner.
func (r *Runner) NewEngine(
	ctx context.Context,
	m authority.Matcher,
) (*dedup.Engine, error) {
	rc, err := r.LoadRanks(ctx, tree.Taxon)
	if err != nil {
		return nil, err
	}
	return dedup.New(r.cfg, r.client, m, rc, status.NewWriter(r.out)), nil
}

// Dedup handles ids of idsFile first, if given, then scans the whole taxon
// tree. Ambivalent cases go to the output directory.
func (r *Runner) Dedup(
	ctx context.Context,
	m authority.Matcher,
	idsFile string,
) (DedupSummary, error) {
	var res DedupSummary
	start := time.Now()

	var ids []int
	if idsFile != "" {
		var err error
		if ids, err = r.readIDs(idsFile); err != nil {
			return res, err
		}
	}

	engine, err := r.NewEngine(ctx, m)
	if err != nil {
		return res, err
	}
	fmt.Fprintln(r.out, status.Legend())

	if len(ids) > 0 {
		engine.CheckIDs(ctx, ids)
	}
	scanErr := engine.Scan(ctx)
	fmt.Fprintln(r.out)

	// cases found before a failure are still worth a review
	res.CasesFile, res.Cases, err = ioexport.Save(r.cfg.OutputDir(), start,
		engine.Cases())
	res.Stats = engine.Stats()
	res.Duration = time.Since(start)
	if scanErr != nil {
		return res, scanErr
	}
	if err != nil {
		return res, err
	}

	slog.Info("Dedup finished", "handled", res.Handled,
		"duplicates", res.Duplicates, "merged", res.Merged,
		"ambivalent", res.Cases, "errors", res.Errors,
		"duration", gnfmt.TimeString(res.Duration.Seconds()))
	return res, nil
}

// readIDs reads an ids file.
func (r *Runner) readIDs(path string) ([]int, error) {
	path = r.DataPath(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, IDsFileError(path, err)
	}
	defer f.Close()

	return dedup.ParseIDs(f)
}
