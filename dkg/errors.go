package dkg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput is returned for invalid parameters or inputs.
	// When it concerns local parameters it is fatal and not retried.
	ErrMalformedInput = errors.New("dkg: malformed input")

	// ErrProofOfKnowledge is returned when a proof of knowledge fails.
	ErrProofOfKnowledge = errors.New("dkg: proof of knowledge verification failed")

	// ErrShareVerification is returned when a share fails Feldman verification.
	ErrShareVerification = errors.New("dkg: share verification failed")

	// ErrInsufficientParticipants is returned when fewer than t
	// participants remain qualified.
	ErrInsufficientParticipants = errors.New("dkg: insufficient participants")

	// ErrSelfConsistency signals local corruption.
	ErrSelfConsistency = errors.New("dkg: self consistency check failed")

	// ErrTimeout marks a peer that did not deliver within the barrier window.
	ErrTimeout = errors.New("dkg: timeout")

	// ErrInvalidPhase is returned when an operation is called out of order.
	ErrInvalidPhase = errors.New("dkg: invalid phase")

	// ErrDuplicateMessage is returned when a peer sends two different
	// values for the same slot.
	ErrDuplicateMessage = errors.New("dkg: conflicting duplicate message")

	// ErrMisrouted is returned for a share addressed to another participant.
	ErrMisrouted = errors.New("dkg: share addressed to another participant")

	// ErrExcluded is returned to a participant that the others excluded.
	ErrExcluded = errors.New("dkg: excluded by upheld complaint")

	// ErrUnexpectedSender is returned for messages from unknown, excluded
	// or out-of-range participants.
	ErrUnexpectedSender = errors.New("dkg: unexpected sender")
)

// PeerError attributes an error to a peer.
type PeerError struct {
	Index uint32
	Err   error
}

func (e *PeerError) Error() string {
	return fmt.Sprintf("dkg: participant %d: %v", e.Index, e.Err)
}

func (e *PeerError) Unwrap() error {
	return e.Err
}

func peerError(index uint32, err error) *PeerError {
	return &PeerError{Index: index, Err: err}
}

// InsufficientParticipantsError reports that the qualified set dropped
// below the threshold.
type InsufficientParticipantsError struct {
	Qualified int
	Threshold int
	Excluded  []uint32
}

func (e *InsufficientParticipantsError) Error() string {
	parts := make([]string, len(e.Excluded))
	for i, idx := range e.Excluded {
		parts[i] = fmt.Sprint(idx)
	}
	return fmt.Sprintf("dkg: insufficient participants: %d qualified, threshold %d, excluded [%s]",
		e.Qualified, e.Threshold, strings.Join(parts, " "))
}

func (e *InsufficientParticipantsError) Is(target error) bool {
	return target == ErrInsufficientParticipants
}

// SelfConsistencyError reports a local inconsistency for a participant.
type SelfConsistencyError struct {
	Index  uint32
	Reason string
}

func (e *SelfConsistencyError) Error() string {
	return fmt.Sprintf("dkg: self consistency check failed for participant %d: %s", e.Index, e.Reason)
}

func (e *SelfConsistencyError) Is(target error) bool {
	return target == ErrSelfConsistency
}
