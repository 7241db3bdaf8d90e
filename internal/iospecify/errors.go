package iospecify

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

// maxBody limits how much of an error response goes into a message.
const maxBody = 300

func RequestError(method, path string, err error) error {
	msg := "Request <em>%s %s</em> to Specify failed"
	vars := []any{method, path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.APIRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s %s: %w", fn, method, path, err),
	}
}

func StatusError(method, path string, status int, body []byte) error {
	msg := "Specify answered <em>%d</em> to <em>%s %s</em>"
	vars := []any{status, method, path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	b := strings.TrimSpace(string(body))
	if len(b) > maxBody {
		b = b[:maxBody] + "..."
	}
	return &gn.Error{
		Code: errcode.APIStatusError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s %s: status %d: %s", fn, method, path, status, b),
	}
}

func DecodeError(method, path string, err error) error {
	msg := "Cannot decode JSON of <em>%s %s</em>"
	vars := []any{method, path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.APIDecodeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s %s: %w", fn, method, path, err),
	}
}

func LoginError(user string, collectionID, status int, err error) error {
	msg := "Cannot log in as <em>%s</em> to collection %d (status %d)"
	vars := []any{user, collectionID, status}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.APILoginError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: login %s: %w", fn, user, err),
	}
}

func CollectionNotFoundError(name string, colls map[string]int) error {
	msg := "Collection <em>%s</em> not found, available: %s"
	names := slices.Sorted(maps.Keys(colls))
	vars := []any{name, strings.Join(names, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.APICollectionNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no collection %q", fn, name),
	}
}

func NotLoggedInError() error {
	msg := "Specify session is not logged in"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.APINotLoggedInError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: no csrf token", fn),
	}
}
