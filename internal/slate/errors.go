package slate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/balkashynov/slate/internal/models"
)

// ErrRunning is returned when metadata is edited while a take is rolling
var ErrRunning = errors.New("slate is running: metadata is locked until stop")

// ValidationError lists the required fields that were empty at Start
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Missing, ", "))
}

// PersistenceError reports that a stopped take could not be written to the
// entry log. The take still counts; Entry holds what should have been saved
type PersistenceError struct {
	Entry models.Entry
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("take %d of scene %s was not logged: %v", e.Entry.Take, e.Entry.Scene, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
