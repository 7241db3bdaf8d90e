// Package dedup finds nodes of a tree that share a full name and rank and
// merges true duplicates. Pairs that cannot be decided automatically are
// collected as ambivalent cases for a human review.
package dedup

import "github.com/gnames/sp7tree/pkg/tree"

// ConflictKind tells why a pair of duplicates cannot be merged directly.
type ConflictKind int

const (
	NoConflict ConflictKind = iota
	ParentMismatch
	AuthorMismatch
)

func (k ConflictKind) String() string {
	switch k {
	case ParentMismatch:
		return "parent mismatch"
	case AuthorMismatch:
		return "author mismatch"
	}
	return "none"
}

// Pair is a node and another node with the same full name and rank.
type Pair struct {
	Original  tree.Node
	Candidate tree.Node
	Conflict  ConflictKind
}

// Candidate contains properties of a node that decide which node of a
// duplicate pair survives a merge.
type Candidate struct {
	ID       int
	Author   string
	Children int
}

// Decision is the outcome of weighing a pair.
type Decision struct {
	TargetID int
	SourceID int

	OriginalWeight  int
	CandidateWeight int
}

// Weigh decides which node of a pair is kept. A point goes to the only
// side with an author, to the smaller id and to strictly more children.
// Ties keep the original.
func Weigh(original, candidate Candidate) Decision {
	var res Decision
	switch {
	case original.Author != "" && candidate.Author == "":
		res.OriginalWeight++
	case original.Author == "" && candidate.Author != "":
		res.CandidateWeight++
	}

	if original.ID < candidate.ID {
		res.OriginalWeight++
	} else {
		res.CandidateWeight++
	}

	switch {
	case original.Children > candidate.Children:
		res.OriginalWeight++
	case original.Children < candidate.Children:
		res.CandidateWeight++
	}

	res.TargetID, res.SourceID = original.ID, candidate.ID
	if res.CandidateWeight > res.OriginalWeight {
		res.TargetID, res.SourceID = candidate.ID, original.ID
	}
	return res
}

// Stats counts outcomes of a scan.
type Stats struct {
	Handled    int
	Duplicates int
	Merged     int
	Moved      int
	Ambivalent int
	Errors     int
}
