package specify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Object is a Specify resource as decoded from JSON.
type Object map[string]any

// ID returns the primary key of the object.
func (o Object) ID() int {
	return o.Int("id")
}

// Version returns the optimistic-concurrency token.
func (o Object) Version() int {
	return o.Int("version")
}

// Int returns an integer field. JSON numbers, numeric strings and resource
// URIs are accepted.
func (o Object) Int(field string) int {
	switch v := o[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		return URIID(v)
	}
	return 0
}

// String returns a string field, nil becomes an empty string.
func (o Object) String(field string) string {
	switch v := o[field].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns a boolean field.
func (o Object) Bool(field string) bool {
	v, _ := o[field].(bool)
	return v
}

// Ref returns the id referenced by a URI field such as
// "/api/specify/taxon/12/".
func (o Object) Ref(field string) int {
	s, ok := o[field].(string)
	if !ok {
		return o.Int(field)
	}
	return URIID(s)
}

// URI builds a resource reference for a kind and id.
func URI(kind string, id int) string {
	return fmt.Sprintf("/api/specify/%s/%d/", kind, id)
}

// URIID extracts the id from a resource URI. Zero is returned when the URI
// does not end with a number.
func URIID(uri string) int {
	parts := strings.Split(strings.Trim(uri, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}
