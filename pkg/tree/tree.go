// Package tree contains the data model shared by tree tools: tree types,
// ranks, nodes and input rows. It is a pure package without I/O.
package tree

import (
	"fmt"
	"strings"
)

// Type is one of the hierarchical domains kept by Specify.
type Type string

const (
	Taxon     Type = "taxon"
	Storage   Type = "storage"
	Geography Type = "geography"
)

// NewType converts a user-supplied string to a Type.
func NewType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Taxon, Storage, Geography:
		return t, nil
	}
	return "", TypeError(s)
}

// Kind is the API name of node objects of the tree.
func (t Type) Kind() string {
	return string(t)
}

// DefKind is the API name of tree definitions.
func (t Type) DefKind() string {
	return string(t) + "treedef"
}

// DefItemKind is the API name of rank definitions.
func (t Type) DefItemKind() string {
	return string(t) + "treedefitem"
}

func (t Type) String() string {
	return string(t)
}

// Rank describes one level of a tree definition.
type Rank struct {
	// Name of the rank, for example "Genus".
	Name string

	// RankID is the ordering key, lower values are more inclusive.
	RankID int

	// DefItemID is the remote id of the tree definition item.
	DefItemID int

	// ParentDefItemID is the remote id of the parent definition item.
	ParentDefItemID int
}

func (r Rank) String() string {
	return fmt.Sprintf("%s<%d>", r.Name, r.RankID)
}

// Node is a tree node as it is stored remotely.
type Node struct {
	// ID is assigned by the remote service, zero means not persisted.
	ID int

	Name     string
	FullName string
	Author   string

	ParentID  int
	RankID    int
	DefItemID int
	TreeDefID int

	// IsAccepted is false for synonyms.
	IsAccepted bool

	// AcceptedID points a synonym to its accepted node.
	AcceptedID int

	IsHybrid bool

	// ExternalKey is a taxonomic identifier of an external source and
	// ExternalKeySource names that source.
	ExternalKey       string
	ExternalKeySource string

	// Version is the optimistic-concurrency token required by updates.
	Version int

	Remarks string
}

func (n *Node) String() string {
	return fmt.Sprintf("%s [%d] <%d>", n.FullName, n.ID, n.RankID)
}

// AmbivalentCase is a possible duplicate that needs human review.
type AmbivalentCase struct {
	Node          Node
	Remarks       string
	DuplicateOfID int
}
