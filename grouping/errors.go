package grouping

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for counts that cannot describe a
	// population or an even partition of it. The engine is not modified.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAssignmentFailure is returned when the greedy pass finds no team
	// for some participant under the current encounter history.
	ErrAssignmentFailure = errors.New("assignment failure")
)

// AssignmentError reports the participant the greedy pass could not place.
// It matches ErrAssignmentFailure with errors.Is.
type AssignmentError struct {
	ParticipantID int
	TeamsCount    int
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("participant %d cannot be assigned to any of %d teams", e.ParticipantID, e.TeamsCount)
}

func (e *AssignmentError) Unwrap() error {
	return ErrAssignmentFailure
}
