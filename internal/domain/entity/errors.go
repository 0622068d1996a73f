package entity

import "errors"

// ErrMalformedAmount is returned when a raw base-unit amount is not a valid
// non-negative integer. Callers render such balances as "0".
var ErrMalformedAmount = errors.New("malformed raw amount")

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")
