package sim

import "errors"

var (
	ErrCardinality = errors.New("cardinality mismatch")
	ErrArg         = errors.New("bad argument")
)
