// Package ioexport saves ambivalent duplicate cases for a human review.
// This is an impure I/O package.
package ioexport

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
	"github.com/gnames/sp7tree/pkg/tree"
)

// Header of an ambivalent cases file.
var Header = []string{
	"id", "fullname", "author", "rankid", "parent_id", "duplicate_of_id", "remarks",
}

// FileName returns the name of the cases file of a run started at t.
func FileName(t time.Time) string {
	return "merge_ambivalent_cases_" + t.Format("200601021504") + ".csv"
}

// Record renders a case as CSV fields.
func Record(c tree.AmbivalentCase) []string {
	return []string{
		strconv.Itoa(c.Node.ID),
		c.Node.FullName,
		c.Node.Author,
		strconv.Itoa(c.Node.RankID),
		strconv.Itoa(c.Node.ParentID),
		strconv.Itoa(c.DuplicateOfID),
		c.Remarks,
	}
}

// Unique drops cases that render to the same line, keeping the first one.
func Unique(cases []tree.AmbivalentCase) []tree.AmbivalentCase {
	seen := make(map[string]struct{}, len(cases))
	var res []tree.AmbivalentCase
	for _, c := range cases {
		key := gnuuid.New(gnfmt.ToCSV(Record(c), ',')).String()
		if _, ok := seen[key]; ok {
			slog.Debug("Duplicate ambivalent case", "id", c.Node.ID)
			continue
		}
		seen[key] = struct{}{}
		res = append(res, c)
	}
	return res
}

// Save appends unique cases to the cases file of a run in dir. The header
// is written only to a new file. Nothing is written when there are no
// cases, the returned path is empty then.
func Save(dir string, started time.Time, cases []tree.AmbivalentCase) (string, int, error) {
	cases = Unique(cases)
	if len(cases) == 0 {
		slog.Info("No ambivalent cases found")
		return "", 0, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, ExportError(dir, err)
	}
	path := filepath.Join(dir, FileName(started))

	var isNew bool
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		isNew = true
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", 0, ExportError(path, err)
	}
	defer f.Close()

	if isNew {
		if _, err = fmt.Fprintln(f, gnfmt.ToCSV(Header, ',')); err != nil {
			return "", 0, ExportError(path, err)
		}
	}
	for _, c := range cases {
		if _, err = fmt.Fprintln(f, gnfmt.ToCSV(Record(c), ',')); err != nil {
			return "", 0, ExportError(path, err)
		}
	}
	slog.Info("Saved ambivalent cases", "path", path, "count", len(cases))
	return path, len(cases), nil
}
