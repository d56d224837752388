package pipeline

import "fmt"

// ValidationError is fatal to the submission and is surfaced verbatim to the
// user. It always fires before any backend write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PersistenceError wraps a failed configuration insert. Fatal; the caller
// shows a generic retry affordance rather than the backend detail.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist configuration: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// userFacingMessage maps the typed errors onto what the wizard shows.
func userFacingMessage(err error) string {
	switch err.(type) {
	case *ValidationError:
		return err.Error()
	case *PersistenceError:
		return "could not save your configuration, please try again"
	default:
		return err.Error()
	}
}
