package cuelist

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphCorrupt is returned when a link that must resolve does not.
	ErrGraphCorrupt = errors.New("cue graph corrupt")

	// ErrReservedPage is returned when an operation would unlink a reserved page.
	ErrReservedPage = errors.New("reserved page")

	// ErrPageNotFound is returned for an unknown page id where healing does not apply.
	ErrPageNotFound = errors.New("page not found")
)

// PersistenceError reports a failure reading or writing a show file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s show file %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
