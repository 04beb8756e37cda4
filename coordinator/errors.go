package coordinator

import (
	"errors"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/storage"
)

// Every coordinator failure wraps exactly one of these.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrResourceExhausted  = errors.New("resource exhausted")
	ErrForbidden          = errors.New("forbidden")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// lookupError turns a storage miss into ErrNotFound for the named entity.
func lookupError(err error, entity string, id interface{}) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
	}
	return err
}
