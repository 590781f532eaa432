package credentials

import "errors"

// ErrInvalidSecret is returned for keys containing whitespace.
var ErrInvalidSecret = errors.New("api key contains invalid characters")
