package value

import "errors"

var (
	ErrType  = errors.New("type mismatch")
	ErrArity = errors.New("arity mismatch")
	ErrBind  = errors.New("cannot bind literal")
)
