package reftable

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLoadTable      = errors.New("load reference table failed")
	ErrMalformedTable = errors.New("malformed reference table")
)
