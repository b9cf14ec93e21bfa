package optsim

import (
	"errors"
	"fmt"
)

var (
	ErrNoCurves             = errors.New("optsim: detection model needs at least one response curve")
	ErrTooFewPoints         = errors.New("optsim: response curve needs at least 2 control points")
	ErrNotIncreasing        = errors.New("optsim: response curve energies must be strictly increasing")
	ErrValueRange           = errors.New("optsim: response value outside [0, 1]")
	ErrBeamProfileExhausted = errors.New("optsim: beam profile table exhausted")
	ErrUnknownParticle      = errors.New("optsim: unknown particle")
	ErrUnknownDetector      = errors.New("optsim: unknown sensitive detector")
)

// ErrCurveConfig is returned when a spectral response curve cannot be built.
type ErrCurveConfig struct {
	Curve string
	Err   error
}

func (e *ErrCurveConfig) Error() string {
	return fmt.Sprintf("invalid response curve %q: %v", e.Curve, e.Err)
}

func (e *ErrCurveConfig) Unwrap() error {
	return e.Err
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// ErrWriteTable represents an error when appending rows to a table.
type ErrWriteTable struct {
	TableName string
	Row       int
	Err       error
}

func (e *ErrWriteTable) Error() string {
	return fmt.Sprintf("error writing table %q at row %d: %v", e.TableName, e.Row, e.Err)
}

func (e *ErrWriteTable) Unwrap() error {
	return e.Err
}

// ErrStepRecord represents a malformed record in a step dump.
type ErrStepRecord struct {
	Line int
	Err  error
}

func (e *ErrStepRecord) Error() string {
	return fmt.Sprintf("step dump line %d: %v", e.Line, e.Err)
}

func (e *ErrStepRecord) Unwrap() error {
	return e.Err
}
