package intrinsic

import "errors"

var (
	ErrExists      = errors.New("intrinsic exists")
	ErrUnknown     = errors.New("unknown intrinsic")
	ErrArity       = errors.New("wrong number of arguments")
	ErrPlacement   = errors.New("misplaced argument")
	ErrType        = errors.New("argument type mismatch")
	ErrCardinality = errors.New("cardinality mismatch")
	ErrZeroWeight  = errors.New("total weight is zero")
)
