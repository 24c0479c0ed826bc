package travel

import "errors"

// ErrInvalidInput rejects malformed caller input, such as an empty query
// string or a non-positive context budget. It is returned synchronously and
// never coerced into an empty result.
var ErrInvalidInput = errors.New("invalid input")
