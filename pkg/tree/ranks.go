package tree

import "strings"

// Rank ids of the taxon tree.
const (
	LifeID       = 0
	KingdomID    = 10
	PhylumID     = 30
	ClassID      = 60
	OrderID      = 100
	FamilyID     = 140
	GenusID      = 180
	SubgenusID   = 190
	SpeciesID    = 220
	SubspeciesID = 230
	VarietyID    = 240
	SubvarietyID = 250
	FormaID      = 260
	SubformaID   = 270
)

// StorageRanks lists default rank ids of the storage tree.
var StorageRanks = map[string]int{
	"Institution": 0,
	"Site":        75,
	"Collection":  150,
	"Room":        200,
	"Aisle":       250,
	"Cabinet":     300,
	"Shelf":       350,
	"Box":         400,
	"Rack":        450,
	"CryoBox":     475,
	"Vial":        500,
}

// AcceptedScan is the order in which Accepted<Rank> columns are checked to
// find the rank of an accepted name, most specific first.
var AcceptedScan = []string{
	"Subforma", "Forma", "Subvariety", "Variety", "Subspecies", "Species",
}

// nameParts lists ranks that contribute to a full name, with their markers.
var nameParts = map[int]string{
	GenusID:      "",
	SubgenusID:   "",
	SpeciesID:    "",
	SubspeciesID: "",
	VarietyID:    "var.",
	SubvarietyID: "subvar.",
	FormaID:      "f.",
	SubformaID:   "subf.",
}

// Fragment is a name of one rank on a path.
type Fragment struct {
	RankID int
	Name   string
}

// FullName builds a taxon full name out of the fragments of a path ending
// with the node's own fragment. Nodes above Genus keep their own name.
func FullName(path []Fragment) string {
	if len(path) == 0 {
		return ""
	}
	last := path[len(path)-1]
	if last.RankID < GenusID {
		return last.Name
	}

	var res []string
	for _, f := range path {
		marker, ok := nameParts[f.RankID]
		name := strings.TrimSpace(f.Name)
		if !ok || name == "" {
			continue
		}
		if marker != "" {
			res = append(res, marker)
		}
		res = append(res, name)
	}
	return strings.Join(res, " ")
}
