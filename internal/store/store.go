// Package store provides the key-value storages the score ledger persists its
// record in.
package store

import (
	"errors"
)

var (
	ErrBadName  = errors.New("bad name for store")
	ErrNotFound = errors.New("value not found")
)
