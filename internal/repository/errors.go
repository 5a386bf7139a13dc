package repository

import "fmt"

// FetchError is a failed collaborator call: transport error, non-2xx
// status, or an ok:false payload. Always handled at the call site and
// rendered as a user-visible message, never left to bubble.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchErr(op string, format string, args ...interface{}) *FetchError {
	return &FetchError{Op: op, Err: fmt.Errorf(format, args...)}
}
