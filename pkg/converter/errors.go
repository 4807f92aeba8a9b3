package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrInput means the source script could not be read.
	ErrInput = errors.New("reading source script")

	// ErrTransport means a request to the assistant service failed.
	ErrTransport = errors.New("assistant request failed")

	// ErrRemoteJob means the run reached the failed status.
	ErrRemoteJob = errors.New("assistant run failed")

	// ErrTimedOut means the run did not finish within the poll deadline or
	// attempt cap.
	ErrTimedOut = errors.New("assistant run timed out")

	ErrNoResponse = errors.New("no response from assistant")
	ErrExtraction = errors.New("could not extract JSON content from response")
	ErrParse      = errors.New("could not parse JSON response")
	ErrSchema     = errors.New("steps failed validation")
	ErrOutput     = errors.New("writing steps file")
)

// RemoteJobError carries the error the assistant service reported for a
// failed run.
type RemoteJobError struct {
	RunID   string
	Code    string
	Message string
}

func (e *RemoteJobError) Error() string {
	return fmt.Sprintf("run %s failed: %s", e.RunID, e.Detail())
}

// Detail is the remote error as "code: message", or whichever half is set.
func (e *RemoteJobError) Detail() string {
	switch {
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Code != "":
		return e.Code
	case e.Message != "":
		return e.Message
	default:
		return "no error detail"
	}
}

func (e *RemoteJobError) Unwrap() error {
	return ErrRemoteJob
}
