package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/errcode"
)

func ReadConfigError(path string, err error) error {
	msg := "Cannot read configuration from <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read config %s: %w", fn, path, err),
	}
}

func MenuInputError(err error) error {
	msg := "No choice was made"
	if err == nil {
		err = errors.New("input ended")
	}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MenuInputError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: cannot read menu choice: %w", fn, err),
	}
}

func NoDataFilesError(dir string) error {
	msg := "No data files found in <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NoDataFilesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no data files in %s", fn, dir),
	}
}
