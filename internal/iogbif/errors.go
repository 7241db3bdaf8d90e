package iogbif

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

func RequestError(url string, err error) error {
	msg := "GBIF request <em>%s</em> failed"
	vars := []any{url}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.AuthorityRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %s: %w", fn, url, err),
	}
}
