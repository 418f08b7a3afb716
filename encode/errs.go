package encode

import "errors"

var ErrEncode = errors.New("unencodable value")
