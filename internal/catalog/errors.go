// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"errors"
	"fmt"
)

// ErrCatalogUnavailable is returned when the media directory cannot be listed.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// UnavailableError carries the directory and the underlying filesystem error.
type UnavailableError struct {
	Dir string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable: list %s: %v", e.Dir, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCatalogUnavailable) hold for every UnavailableError.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}
