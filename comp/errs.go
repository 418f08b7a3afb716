package comp

import "errors"

var (
	ErrExists    = errors.New("computation exists")
	ErrUnknown   = errors.New("unknown computation")
	ErrPlacement = errors.New("computation placement error")
	ErrType      = errors.New("computation type error")
	ErrTrace     = errors.New("cannot derive result type")
)
