package domain

import "errors"

// ErrNotFound is returned when a product, line item, or session does
// not exist.
var ErrNotFound = errors.New("not found")
