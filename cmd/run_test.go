package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanner(s string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(s))
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	return gnErr.Code
}

func dataDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("Genus\n"), 0644))
	}
	return dir
}

func TestChoose(t *testing.T) {
	items := []string{"one", "two", "three"}
	tests := []struct {
		name    string
		input   string
		want    int
		invalid int
	}{
		{"first", "1\n", 0, 0},
		{"last with spaces", "  3 \n", 2, 0},
		{"retry on text", "two\n2\n", 1, 1},
		{"retry out of range", "0\n4\n-1\n1\n", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := choose(scanner(tt.input), &out, "Title:", "Number: ", items)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
			assert.Equal(t, tt.invalid, strings.Count(out.String(), "Invalid choice"))
			assert.Contains(t, out.String(), "2. two")
		})
	}
}

func TestChooseEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := choose(scanner("x\n"), &out, "Title:", "Number: ", []string{"one"})
	assert.Equal(t, errcode.MenuInputError, errCode(t, err))
}

func TestSelectRun(t *testing.T) {
	dir := dataDir(t, "taxa.csv", "pairs.csv", "notes.md", ".hidden.csv")
	tools := menuTools()
	require.Len(t, tools, 5)

	tests := []struct {
		name  string
		input string
		tool  string
		file  string
	}{
		{"import taxa", "1\n2\n", "Import taxa", "taxa.csv"},
		{"merge pairs", "5\n1\n", "Merge taxon pairs", "pairs.csv"},
		{"dedup without ids", "4\n1\n", "Merge duplicate taxa", ""},
		{"dedup with ids", "4\n3\n", "Merge duplicate taxa", "taxa.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tl, file, err := selectRun(scanner(tt.input), &out, tools, dir)
			require.NoError(t, err)
			assert.Equal(t, tt.tool, tl.name)
			if tt.file == "" {
				assert.Empty(t, file)
			} else {
				assert.Equal(t, filepath.Join(dir, tt.file), file)
			}
			assert.NotContains(t, out.String(), "notes.md")
			assert.NotContains(t, out.String(), ".hidden.csv")
		})
	}
}

func TestSelectRunNoFiles(t *testing.T) {
	dir := dataDir(t)
	var out bytes.Buffer
	_, _, err := selectRun(scanner("1\n"), &out, menuTools(), dir)
	assert.Equal(t, errcode.NoDataFilesError, errCode(t, err))

	// dedup can run without a file
	tl, file, err := selectRun(scanner("4\n1\n"), &out, menuTools(), dir)
	require.NoError(t, err)
	assert.True(t, tl.optionalFile)
	assert.Empty(t, file)
}
