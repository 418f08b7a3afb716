package manifest

import "errors"

var (
	ErrManifest = errors.New("bad manifest")
	ErrUnknown  = errors.New("unknown name")
	ErrStep     = errors.New("bad step")
	ErrVariant  = errors.New("bad variant")
)
