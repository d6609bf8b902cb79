package contract

import (
	"errors"
	"fmt"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")

	ErrDuplicateName     = errors.New("tool name already registered")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrInvalidArguments  = errors.New("invalid tool arguments")
	ErrRemoteUnavailable = errors.New("remote tool unavailable")
	ErrRemoteTool        = errors.New("remote tool returned error status")
	ErrStepFailed        = errors.New("plan step failed")

	ErrBackendAbsent = errors.New("reasoning backend not configured")
	ErrBackendFailed = errors.New("reasoning backend call failed")
)

// RemoteToolError is returned when a remote tool answers outside the 2xx range.
type RemoteToolError struct {
	StatusCode int
	Body       string
}

func (e *RemoteToolError) Error() string {
	return fmt.Sprintf("%s: status=%d body=%s", ErrRemoteTool, e.StatusCode, e.Body)
}

func (e *RemoteToolError) Is(target error) bool {
	return target == ErrRemoteTool
}

type BackendCause int

const (
	BackendAbsent BackendCause = iota + 1
	BackendCallFailed
)

// BackendError classifies reasoning backend failures so callers can choose a
// fallback per cause. Both causes also match ErrRemoteUnavailable.
type BackendError struct {
	Cause BackendCause
	Err   error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrRemoteUnavailable || target == e.sentinel()
}

func (e *BackendError) sentinel() error {
	if e.Cause == BackendAbsent {
		return ErrBackendAbsent
	}
	return ErrBackendFailed
}

// StepError aborts a fail-fast run. Partial holds every slot, with unstarted
// steps left pending.
type StepError struct {
	Index   int
	Tool    string
	Err     error
	Partial ExecutionResult
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step=%d tool=%s: %v", ErrStepFailed, e.Index, e.Tool, e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{ErrStepFailed, e.Err}
}
