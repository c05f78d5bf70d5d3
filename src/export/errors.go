package export

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection means the store could not be reached or refused the handshake
	ErrConnection = errors.New("connection error")
	// ErrWrite means the snapshot could not be written to its destination
	ErrWrite = errors.New("write error")
	// ErrUnsupportedType marks keys whose type has no exported representation
	ErrUnsupportedType = errors.New("unsupported key type")
)

// Stage names the step of an export run that failed
type Stage string

const (
	StageConnect Stage = "connect"
	StageScan    Stage = "scan"
	StageWrite   Stage = "write"
)

// StageError wraps a fatal error with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded on err, if any
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
