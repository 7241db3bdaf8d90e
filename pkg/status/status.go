// Package status prints terse progress tokens so long unattended runs can
// be monitored.
package status

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Tokens of progress output.
const (
	Handling        = "◘"
	Duplicate       = "!"
	NotRetrieved    = "#"
	AuthorConflict  = "?"
	ParentConflict  = "¿"
	NoLongerFound   = "x"
	ForceMerge      = "¤"
	Resolved        = "*"
	Error           = "@"
	Created         = "+"
	Found           = "="
	legendSeparator = "----------------------------------"
)

// Rank formats a rank id token.
func Rank(id int) string {
	return fmt.Sprintf("<%d>", id)
}

// Node formats a node id token.
func Node(id int) string {
	return fmt.Sprintf("[%d]", id)
}

// Merge formats a merge request token.
func Merge(source, target int) string {
	return fmt.Sprintf("|%d->%d|", source, target)
}

// Move formats a move request token.
func Move(node, parent int) string {
	return fmt.Sprintf("|%d=>%d|", node, parent)
}

// Duration formats elapsed time of a merge or move.
func Duration(d time.Duration) string {
	return fmt.Sprintf("{%.2f}", d.Seconds())
}

// Legend explains progress tokens.
func Legend() string {
	lines := []string{
		"LEGEND:",
		Handling + "      = Handling node",
		"<rank> = Rank id (Genus:180, Species:220, Subspecies:230)",
		"[id]   = Single node entry (id = primary key)",
		Duplicate + "      = Possible duplicate",
		NotRetrieved + "      = Could not retrieve node",
		AuthorConflict + "      = Ambivalence on authors",
		ParentConflict + "      = Ambivalence on parents",
		NoLongerFound + "      = Duplicates not found",
		ForceMerge + "      = Author names missing: force merge",
		Resolved + "      = Ambiguity resolved for merge/move",
		"|s->t| = Merge request (s = node id, t = target id)",
		"|s=>t| = Move request (s = node id, t = target parent id)",
		"{t}    = Merge/move duration (t = seconds elapsed)",
		Error + "      = An error occurred",
		Created + "      = Node created (import)",
		Found + "      = Node found (import)",
		legendSeparator,
	}
	return strings.Join(lines, "\n") + "\n"
}

// Reporter receives progress tokens.
type Reporter interface {
	Token(tok string)
}

// Writer prints tokens without separators.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Reporter that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Token(tok string) {
	fmt.Fprint(w.w, tok)
}

// Discard ignores all tokens.
type Discard struct{}

func (Discard) Token(string) {}
