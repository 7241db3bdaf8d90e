package iotesting

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
)

// Call records one request made to the fake Specify.
type Call struct {
	Method string
	Kind   string
	ID     int
	Target int
}

// Specify is an in-memory implementation of specify.Client. Objects are
// kept per kind, list results are ordered by id unless the query asks for
// another field. Merges behave like the server: the source is deleted and
// its children and synonyms are moved to the target.
type Specify struct {
	objects map[string]map[int]specify.Object
	lastID  int

	// Calls keeps requests in the order they were made.
	Calls []Call

	// MergeStatus overrides the status of merges of given source ids.
	MergeStatus map[int]int

	// MoveStatus overrides the status of moves of given node ids.
	MoveStatus map[int]int
}

// NewSpecify creates an empty fake.
func NewSpecify() *Specify {
	return &Specify{
		objects:     make(map[string]map[int]specify.Object),
		MergeStatus: make(map[int]int),
		MoveStatus:  make(map[int]int),
	}
}

// Add stores an object and returns its id. An object without id gets the
// next free one.
func (s *Specify) Add(kind string, obj specify.Object) int {
	o := maps.Clone(obj)
	id := o.ID()
	if id == 0 {
		s.lastID++
		id = s.lastID
	} else if id > s.lastID {
		s.lastID = id
	}
	o["id"] = id
	if _, ok := o[specify.FieldVersion]; !ok {
		o[specify.FieldVersion] = 0
	}
	if s.objects[kind] == nil {
		s.objects[kind] = make(map[int]specify.Object)
	}
	s.objects[kind][id] = o
	return id
}

// AddNode stores a tree node.
func (s *Specify) AddNode(tt tree.Type, n tree.Node) int {
	return s.Add(tt.Kind(), specify.NodeToObject(tt, n))
}

// Node returns a stored node.
func (s *Specify) Node(tt tree.Type, id int) (tree.Node, bool) {
	o, ok := s.objects[tt.Kind()][id]
	if !ok {
		return tree.Node{}, false
	}
	return specify.NodeFromObject(tt, o), true
}

// Nodes returns all stored nodes of a tree ordered by id.
func (s *Specify) Nodes(tt tree.Type) []tree.Node {
	var res []tree.Node
	for _, id := range slices.Sorted(maps.Keys(s.objects[tt.Kind()])) {
		res = append(res, specify.NodeFromObject(tt, s.objects[tt.Kind()][id]))
	}
	return res
}

// Count returns the number of stored objects of a kind.
func (s *Specify) Count(kind string) int {
	return len(s.objects[kind])
}

// CallCount returns the number of calls made with a method.
func (s *Specify) CallCount(method string) int {
	var res int
	for _, c := range s.Calls {
		if c.Method == method {
			res++
		}
	}
	return res
}

func (s *Specify) GetObject(
	_ context.Context,
	kind string,
	id int,
) (specify.Object, error) {
	s.Calls = append(s.Calls, Call{Method: "GET", Kind: kind, ID: id})
	o, ok := s.objects[kind][id]
	if !ok {
		return nil, nil
	}
	return maps.Clone(o), nil
}

func (s *Specify) GetObjects(
	_ context.Context,
	kind string,
	q specify.Query,
) ([]specify.Object, error) {
	s.Calls = append(s.Calls, Call{Method: "LIST", Kind: kind})
	var all []specify.Object
	for _, o := range s.objects[kind] {
		if matches(o, q.Filters) {
			all = append(all, o)
		}
	}
	slices.SortFunc(all, func(a, b specify.Object) int {
		if q.OrderBy != "" {
			if c := cmp.Compare(a.Int(q.OrderBy), b.Int(q.OrderBy)); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID(), b.ID())
	})

	if q.Offset >= len(all) {
		return nil, nil
	}
	all = all[q.Offset:]
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}
	res := make([]specify.Object, len(all))
	for i := range all {
		res[i] = maps.Clone(all[i])
	}
	return res, nil
}

func (s *Specify) CreateObject(
	_ context.Context,
	kind string,
	obj specify.Object,
) (specify.Object, error) {
	o := maps.Clone(obj)
	delete(o, "id")
	id := s.Add(kind, o)
	s.Calls = append(s.Calls, Call{Method: "POST", Kind: kind, ID: id})
	return maps.Clone(s.objects[kind][id]), nil
}

func (s *Specify) UpdateObject(
	_ context.Context,
	kind string,
	id int,
	obj specify.Object,
) (specify.Object, error) {
	s.Calls = append(s.Calls, Call{Method: "PUT", Kind: kind, ID: id})
	cur, ok := s.objects[kind][id]
	if !ok {
		return nil, fmt.Errorf("%s %d: status %d", kind, id, http.StatusNotFound)
	}
	if obj.Version() != cur.Version() {
		return nil, fmt.Errorf("%s %d: status %d", kind, id, http.StatusConflict)
	}
	o := maps.Clone(obj)
	o["id"] = id
	o[specify.FieldVersion] = cur.Version() + 1
	s.objects[kind][id] = o
	return maps.Clone(o), nil
}

func (s *Specify) DeleteObject(_ context.Context, kind string, id int) error {
	s.Calls = append(s.Calls, Call{Method: "DELETE", Kind: kind, ID: id})
	if _, ok := s.objects[kind][id]; !ok {
		return fmt.Errorf("%s %d: status %d", kind, id, http.StatusNotFound)
	}
	delete(s.objects[kind], id)
	return nil
}

func (s *Specify) MergeNodes(
	_ context.Context,
	treeKind string,
	sourceID, targetID int,
) (int, error) {
	s.Calls = append(s.Calls,
		Call{Method: "MERGE", Kind: treeKind, ID: sourceID, Target: targetID})
	if st, ok := s.MergeStatus[sourceID]; ok {
		return st, nil
	}
	nodes := s.objects[treeKind]
	if _, ok := nodes[sourceID]; !ok {
		return http.StatusNotFound, nil
	}
	if _, ok := nodes[targetID]; !ok {
		return http.StatusInternalServerError, nil
	}
	for _, o := range nodes {
		if o.Ref(specify.FieldParent) == sourceID {
			o[specify.FieldParent] = specify.URI(treeKind, targetID)
		}
		if o.Ref(specify.FieldAcceptedTaxon) == sourceID {
			o[specify.FieldAcceptedTaxon] = specify.URI(treeKind, targetID)
		}
	}
	delete(nodes, sourceID)
	return http.StatusOK, nil
}

func (s *Specify) MoveNode(
	_ context.Context,
	treeKind string,
	nodeID, parentID int,
) (int, error) {
	s.Calls = append(s.Calls,
		Call{Method: "MOVE", Kind: treeKind, ID: nodeID, Target: parentID})
	if st, ok := s.MoveStatus[nodeID]; ok {
		return st, nil
	}
	nodes := s.objects[treeKind]
	o, ok := nodes[nodeID]
	if !ok {
		return http.StatusNotFound, nil
	}
	if _, ok := nodes[parentID]; !ok {
		return http.StatusInternalServerError, nil
	}
	o[specify.FieldParent] = specify.URI(treeKind, parentID)
	return http.StatusOK, nil
}

func matches(o specify.Object, filters map[string]string) bool {
	for k, v := range filters {
		if fieldString(o, k) != v {
			return false
		}
	}
	return true
}

func fieldString(o specify.Object, field string) string {
	switch v := o[field].(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(v, "/api/") {
			return fmt.Sprint(specify.URIID(v))
		}
		return v
	case float64:
		return fmt.Sprint(int(v))
	default:
		return fmt.Sprint(v)
	}
}
