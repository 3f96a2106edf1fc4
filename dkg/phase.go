package dkg

import "fmt"

// Phase is the position of a participant in the protocol. Phases only
// move forward.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseAwaitingCommitments
	PhaseCommitmentsVerified
	PhaseAwaitingShares
	PhaseResolvingComplaints
	PhaseSharesVerified
	PhaseFinalized
	// PhaseZeroized is terminal: the secrets are gone and every
	// operation fails.
	PhaseZeroized
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseAwaitingCommitments:
		return "awaiting commitments"
	case PhaseCommitmentsVerified:
		return "commitments verified"
	case PhaseAwaitingShares:
		return "awaiting shares"
	case PhaseResolvingComplaints:
		return "resolving complaints"
	case PhaseSharesVerified:
		return "shares verified"
	case PhaseFinalized:
		return "finalized"
	case PhaseZeroized:
		return "zeroized"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

func phaseError(op string, got Phase, want ...Phase) error {
	return fmt.Errorf("%w: %s in phase %q, want %v", ErrInvalidPhase, op, got, want)
}
