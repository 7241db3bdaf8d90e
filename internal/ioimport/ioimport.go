// Package ioimport runs the tools of sp7tree against data files: row-driven
// imports into a tree, explicit merge pairs and the duplicate scan.
// This is an impure I/O package that reads data files and writes progress
// to the terminal.
package ioimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/sp7tree/internal/iorows"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/ranks"
	"github.com/gnames/sp7tree/pkg/resolve"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/status"
	"github.com/gnames/sp7tree/pkg/tree"
)

// Runner runs tools for one Specify session.
type Runner struct {
	cfg          *config.Config
	client       specify.Client
	collectionID int
	out          io.Writer
}

// New creates a Runner. Progress goes to out.
func New(
	cfg *config.Config,
	client specify.Client,
	collectionID int,
	out io.Writer,
) *Runner {
	return &Runner{
		cfg:          cfg,
		client:       client,
		collectionID: collectionID,
		out:          out,
	}
}

// Summary counts outcomes of an import.
type Summary struct {
	Rows     int
	Created  int
	Found    int
	Synonyms int
	Errors   int
	Duration time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"Processed %s rows in %s: %s nodes created, %s found, %s synonyms, %s rows failed",
		humanize.Comma(int64(s.Rows)),
		gnfmt.TimeString(s.Duration.Seconds()),
		humanize.Comma(int64(s.Created)),
		humanize.Comma(int64(s.Found)),
		humanize.Comma(int64(s.Synonyms)),
		humanize.Comma(int64(s.Errors)),
	)
}

// LoadRanks finds the tree definition of a tree type for the collection
// and loads its ranks.
func (r *Runner) LoadRanks(ctx context.Context, tt tree.Type) (*ranks.Cache, error) {
	defID, err := ranks.TreeDefIDFor(ctx, r.client, tt, r.collectionID,
		r.cfg.Tree.StorageTreeDefID)
	if err != nil {
		return nil, err
	}
	return ranks.Load(ctx, r.client, tt, defID)
}

// Import resolves every row of a data file in a tree. Header problems stop
// the import before any row is sent; failed rows are logged and skipped.
func (r *Runner) Import(ctx context.Context, tt tree.Type, path string) (Summary, error) {
	var res Summary
	start := time.Now()

	path = r.DataPath(path)
	tbl, err := iorows.Read(path)
	if err != nil {
		return res, err
	}
	rc, err := r.LoadRanks(ctx, tt)
	if err != nil {
		return res, err
	}
	layout, err := rc.ClassifyHeaders(tbl.Headers)
	if err != nil {
		return res, err
	}
	slog.Info("Importing data file", "path", path, "tree", tt.String(),
		"rows", len(tbl.Rows), "rank_columns", layout.RankColumns)

	res = r.importRows(ctx, resolve.New(r.client, rc, nil), layout, tbl)
	res.Duration = time.Since(start)
	slog.Info("Import finished", "file", filepath.Base(path),
		"rows", res.Rows, "created", res.Created, "found", res.Found,
		"errors", res.Errors, "duration", gnfmt.TimeString(res.Duration.Seconds()))
	return res, nil
}

func (r *Runner) importRows(
	ctx context.Context,
	rs *resolve.Resolver,
	layout ranks.Layout,
	tbl *iorows.Table,
) Summary {
	var res Summary
	var rep status.Reporter = status.Discard{}
	var bar *pb.ProgressBar
	if config.Bool(r.cfg.Import.WithTokens) {
		rep = status.NewWriter(r.out)
	} else {
		bar = newProgressBar(len(tbl.Rows), "rows ", r.out)
		defer bar.Finish()
	}

	for i, row := range tbl.Rows {
		res.Rows++
		if bar != nil {
			bar.Increment()
		}

		rr, err := rs.ResolveRow(ctx, layout, row)
		res.Created += rr.Created
		res.Found += rr.Found
		if err != nil {
			res.Errors++
			rep.Token(status.Error)
			// header is line 1
			slog.Error("Row failed", "line", i+2, "error", err)
			continue
		}
		if rr.Synonym {
			res.Synonyms++
		}
		if rr.Created > 0 {
			rep.Token(status.Created)
		} else {
			rep.Token(status.Found)
		}
	}
	return res
}

// DataPath resolves a data file name. A relative path that does not exist
// is looked up in the data directory.
func (r *Runner) DataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(r.cfg.Import.DataDir, path)
}

func newProgressBar(total int, prefix string, w io.Writer) *pb.ProgressBar {
	bar := pb.Full.New(total)
	bar.SetWriter(w)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar.Start()
}
