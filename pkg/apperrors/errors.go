package apperrors

import "errors"

var ErrUnauthenticated = errors.New("missing or invalid credentials")

var ErrForbidden = errors.New("insufficient permissions")

var ErrNotFound = errors.New("not found")

var ErrDuplicatePending = errors.New("a pending submission for this level already exists")

var ErrAlreadyResolved = errors.New("submission has already been resolved")

var ErrSubmissionsPaused = errors.New("thumbnail submissions are temporarily disabled")

var ErrInvalidImage = errors.New("invalid image data")

// StorageError wraps a filesystem fault so handlers can map it to 500
// without leaking the underlying path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError wraps a database fault.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
