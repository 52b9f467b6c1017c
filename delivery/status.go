package delivery

import "fmt"

/* Status represents the current state of a webhook delivery
 * Lifecycle: Pending -> Delivering -> Delivered/Retrying/Exhausted/Error
 */
type Status int

const (
	Pending Status = iota + 1
	Delivering
	Retrying
	Delivered
	Exhausted
	// Error means automatic retries were halted after a persistence
	// failure and the delivery needs manual intervention.
	Error
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Delivering:
		return "delivering"
	case Retrying:
		return "retrying"
	case Delivered:
		return "delivered"
	case Exhausted:
		return "exhausted"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "pending":
		return Pending
	case "delivering":
		return Delivering
	case "retrying":
		return Retrying
	case "delivered":
		return Delivered
	case "exhausted":
		return Exhausted
	case "error":
		return Error
	default:
		return Pending
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Error {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Delivered || s == Exhausted || s == Error
}

// Summary collapses the internal lifecycle into the externally visible
// status: in-flight states all read as "pending".
func (s Status) Summary() string {
	switch s {
	case Delivered, Exhausted, Error:
		return s.String()
	default:
		return "pending"
	}
}
