package app

import "errors"

// ErrLocked is returned when another process holds the catalog lock.
var ErrLocked = errors.New("catalog is locked by another process")
