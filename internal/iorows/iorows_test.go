package iorows_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iorows"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		msg  string
		in   string
		want rune
	}{
		{"comma", "Genus,Species\nAus,bus", ','},
		{"semicolon", "Genus;Species;SpeciesAuthor\nAus;bus;L., 1753", ';'},
		{"commas in data only", "Genus;Species\nAus,x;bus,y,z", ';'},
		{"single column", "Genus\nAus", ','},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, iorows.Delimiter(tt.in))
		})
	}
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "taxa.csv",
		"\ufeffGenus;Species;SpeciesAuthor;isAccepted\n"+
			"Draba;incana;L.;Yes\n"+
			";;;\n"+
			"Draba;\"confusa\";\"Ehrh.; 1792\"\n")

	tbl, err := iorows.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Genus", "Species", "SpeciesAuthor", "isAccepted"},
		tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "L.", tbl.Rows[0]["SpeciesAuthor"])
	assert.Equal(t, "Ehrh.; 1792", tbl.Rows[1]["SpeciesAuthor"])

	_, ok := tbl.Rows[1].Value("isAccepted")
	assert.False(t, ok)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Collection", "Room", "Box"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Botany", "R-12", "B-7"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := iorows.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Collection", "Room", "Box"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "B-7", tbl.Rows[0]["Box"])
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		msg  string
		path string
	}{
		{"missing", filepath.Join(t.TempDir(), "none.csv")},
		{"empty", writeFile(t, "empty.csv", "")},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := iorows.Read(tt.path)
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, errcode.ReadFileError, gnErr.Code)
		})
	}
}

func TestDataFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", ".hidden.csv", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	files, err := iorows.DataFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx", "b.csv"}, files)
}
