// Package specify describes the Specify 7 REST API as it is used by tree
// tools. Concrete HTTP implementation lives in internal/iospecify.
package specify

import (
	"context"
	"net/http"
)

// Query holds paging, filtering and ordering of a list request.
type Query struct {
	Limit   int
	Offset  int
	Filters map[string]string
	OrderBy string
}

// Client provides access to Specify objects and tree operations.
type Client interface {
	// GetObject fetches one object by its primary key. A missing object
	// returns nil without error.
	GetObject(ctx context.Context, kind string, id int) (Object, error)

	// GetObjects returns a page of objects that satisfy equality filters.
	GetObjects(ctx context.Context, kind string, q Query) ([]Object, error)

	// CreateObject persists a new object and returns it with assigned id.
	CreateObject(ctx context.Context, kind string, obj Object) (Object, error)

	// UpdateObject replaces an object. The object must carry the current
	// version, otherwise the server rejects the update.
	UpdateObject(ctx context.Context, kind string, id int, obj Object) (Object, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, kind string, id int) error

	// MergeNodes merges source node into target node. The server deletes
	// the source and re-parents its children. Returns the HTTP status.
	MergeNodes(ctx context.Context, treeKind string, sourceID, targetID int) (int, error)

	// MoveNode moves a node under a new parent. Returns the HTTP status.
	MoveNode(ctx context.Context, treeKind string, nodeID, parentID int) (int, error)
}

// Session handles authentication of a Client.
type Session interface {
	// Collections returns collections of the institution by name.
	Collections(ctx context.Context) (map[string]int, error)

	// Login opens a session for a collection and returns the anti-forgery
	// token that accompanies further calls.
	Login(ctx context.Context, username, password string, collectionID int) (string, error)

	// Logout closes the session.
	Logout(ctx context.Context) error
}

// Service is an authenticated Client.
type Service interface {
	Client
	Session
}

// Statuses of tree merge and move calls.
const (
	StatusOK            = http.StatusOK
	StatusNoContent     = http.StatusNoContent
	StatusAlreadyMerged = http.StatusNotFound
)

// MergeSucceeded is true for responses of a completed merge or move.
func MergeSucceeded(status int) bool {
	return status == StatusOK || status == StatusNoContent
}
