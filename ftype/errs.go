package ftype

import "errors"

var (
	ErrParse           = errors.New("type parse error")
	ErrNestedPlacement = errors.New("placed type inside a placed type")
	ErrDupField        = errors.New("duplicate struct field name")
)
