// Package iorows reads tabular data files: CSV with comma or semicolon
// delimiters and the first sheet of XLSX workbooks. The first line is the
// header.
// This is an impure I/O package.
package iorows

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/xuri/excelize/v2"
)

const bom = "\ufeff"

// Table is the content of a data file.
type Table struct {
	// Path of the file.
	Path string

	// Headers in the order of the file.
	Headers []string

	// Rows keyed by headers. Missing trailing cells are absent from a row.
	Rows []tree.Row
}

// Read loads a data file, the format is chosen by extension.
func Read(path string) (*Table, error) {
	var recs [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		recs, err = readXLSX(path)
	default:
		recs, err = readCSV(path)
	}
	if err != nil {
		return nil, ReadFileError(path, err)
	}
	if len(recs) == 0 {
		return nil, EmptyFileError(path)
	}
	return toTable(path, recs), nil
}

// DataFiles lists readable data files of a directory.
func DataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ReadFileError(dir, err)
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".txt", ".xlsx", ".xlsm":
			res = append(res, e.Name())
		}
	}
	return res, nil
}

func toTable(path string, recs [][]string) *Table {
	hs := recs[0]
	res := &Table{Path: path, Headers: make([]string, len(hs))}
	for i, h := range hs {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		res.Headers[i] = strings.TrimSpace(h)
	}

	for _, rec := range recs[1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(tree.Row, len(res.Headers))
		for i, h := range res.Headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	r := csv.NewReader(br)
	r.Comma = Delimiter(string(first))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// Delimiter guesses the delimiter from the first line of a CSV file.
// Semicolon wins when the header has more semicolons than commas.
func Delimiter(s string) rune {
	line, _, _ := strings.Cut(s, "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}
