// Package dkg implements a two-round threshold distributed key generation
// protocol (Pedersen DKG with Feldman verification and Schnorr proofs of
// knowledge) over an arbitrary prime-order group.
//
// n participants jointly derive a group public key and n secret key shares
// such that any t shares reconstruct the group secret while fewer than t
// learn nothing about it. No participant ever holds the full secret.
//
// # Protocol
//
// Each participant runs the same state machine and only moves forward:
//
//  1. [DKG.NewParticipant] samples a degree t-1 polynomial, commits to every
//     coefficient and proves knowledge of the constant term. The returned
//     [Participant] is public; the [Coefficients] never leave the owner.
//  2. [DKG.NewRound1] starts round 1. [Round1State.Broadcast] yields the
//     record to send to every peer and [Round1State.Receive] collects theirs.
//     [Round1State.Verify] checks every peer and excludes the ones that are
//     missing, malformed or carry an invalid proof.
//  3. [Round1State.ToRound2] evaluates the polynomial at every qualified
//     peer's index, producing a [SecretShareSet] for confidential delivery,
//     and wipes the coefficients.
//  4. [Round2State.Receive] verifies each incoming share against the sender's
//     commitments. A bad share produces a [Complaint] instead of aborting.
//  5. [Round2State.CloseShares] adds complaints for missing shares. All
//     complaints are broadcast; accused participants answer with
//     [Round2State.Justify]; [Round2State.Resolve] applies the same rule on
//     every participant, so the qualified set is identical everywhere.
//  6. [Round2State.Finalize] sums the verified shares into the
//     [SecretKeyShare] and the qualified constant-term commitments into the
//     [GroupKey].
//
// # Faults
//
// Misbehaving or silent peers are recorded as [Fault] values in an
// [Exclusions] set and never abort the run by themselves. The run fails
// with an [InsufficientParticipantsError] only when fewer than t
// participants remain qualified. Local inconsistencies are reported as
// [SelfConsistencyError] values.
//
// # Example
//
//	d, _ := dkg.New(&bjj.BJJ{}, 2, 3)
//	p, coeffs, _ := d.NewParticipant(rand.Reader, 1)
//	r1, _ := d.NewRound1(p, coeffs)
//	broadcast(r1.Broadcast())
//	for _, peer := range collectParticipants() {
//	    r1.Receive(peer)
//	}
//	if err := r1.Verify(); err != nil {
//	    return err
//	}
//	r2, shares, _ := r1.ToRound2()
//	// ... deliver shares.For(j) to j, Receive incoming shares,
//	// exchange complaints and justifications, Resolve ...
//	secret, groupKey, err := r2.Finalize(p.PublicKey())
//
// The session package drives this state machine over a transport.
package dkg
