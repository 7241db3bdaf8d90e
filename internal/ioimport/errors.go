package ioimport

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

func IDsFileError(path string, err error) error {
	msg := "Cannot open ids file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot open %s: %w", fn, path, err),
	}
}
