package tree

import "strings"

// Reserved column names.
const (
	IsAcceptedColumn = "isAccepted"
	IsHybridColumn   = "isHybrid"
)

// Row is one line of input data keyed by header names. Absent columns and
// empty or whitespace-only values are both treated as blank.
type Row map[string]string

// Value returns the trimmed value of a column and whether it is non-blank.
func (r Row) Value(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Blank is true when the column is absent or empty.
func (r Row) Blank(col string) bool {
	_, ok := r.Value(col)
	return !ok
}

// IsAccepted reads the isAccepted column. Blank means accepted, only "Yes"
// and "No" are valid otherwise.
func (r Row) IsAccepted() (bool, error) {
	v, ok := r.Value(IsAcceptedColumn)
	if !ok {
		return true, nil
	}
	switch v {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	}
	return false, IsAcceptedValueError(v)
}

// IsHybrid reads the isHybrid column, any of "Yes", "true" or "1" counts.
func (r Row) IsHybrid() bool {
	v, ok := r.Value(IsHybridColumn)
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// Author returns the value of the <rank>Author column.
func (r Row) Author(rank string) string {
	v, _ := r.Value(rank + "Author")
	return v
}

// Accepted returns the value of the Accepted<rank> column.
func (r Row) Accepted(rank string) (string, bool) {
	return r.Value("Accepted" + rank)
}

// AcceptedAuthor returns the value of the Accepted<rank>Author column.
func (r Row) AcceptedAuthor(rank string) string {
	v, _ := r.Value("Accepted" + rank + "Author")
	return v
}

// TaxonKey returns the external key of a rank and its source.
func (r Row) TaxonKey(rank string) (string, string) {
	key, _ := r.Value(rank + "TaxonKey")
	src, _ := r.Value(rank + "TaxonKeySource")
	return key, src
}
