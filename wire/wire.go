package wire

import (
	"errors"
	"fmt"

	"go.dedis.ch/protobuf"

	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/group"
)

// ErrInvalidEncoding is returned when a message does not decode to valid
// group elements.
var ErrInvalidEncoding = errors.New("wire: invalid encoding")

// Kind identifies the payload of an Envelope.
type Kind uint32

const (
	KindCommitments Kind = iota + 1
	KindShare
	KindComplaints
	KindJustifications
)

func (k Kind) String() string {
	switch k {
	case KindCommitments:
		return "commitments"
	case KindShare:
		return "share"
	case KindComplaints:
		return "complaints"
	case KindJustifications:
		return "justifications"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// Envelope frames every message exchanged by a session. Receiver is zero
// for broadcasts.
type Envelope struct {
	Kind     Kind
	Sender   uint32
	Receiver uint32
	Payload  []byte
}

// ParticipantMessage is the encoding of a [dkg.Participant].
type ParticipantMessage struct {
	Index       uint32
	Commitments [][]byte
	ProofR      []byte
	ProofZ      []byte
}

// ShareMessage is the encoding of a [dkg.SecretShare].
type ShareMessage struct {
	Sender   uint32
	Receiver uint32
	Value    []byte
}

type ComplaintMessage struct {
	Accuser uint32
	Accused uint32
	Reason  uint32
}

type ComplaintsMessage struct {
	Complaints []*ComplaintMessage
}

type JustificationMessage struct {
	Accused uint32
	Accuser uint32
	Value   []byte
}

type JustificationsMessage struct {
	Justifications []*JustificationMessage
}

// KeyMaterialMessage is the persisted output of one participant.
type KeyMaterialMessage struct {
	Group    string
	Index    uint32
	Secret   []byte
	GroupKey []byte
}

func encodeMessage(msg any) ([]byte, error) {
	data, err := protobuf.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %T: %w", msg, err)
	}
	return data, nil
}

// EncodeEnvelope marshals e.
func EncodeEnvelope(e *Envelope) ([]byte, error) {
	return encodeMessage(e)
}

// DecodeEnvelope unmarshals an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := protobuf.Decode(data, e); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrInvalidEncoding, err)
	}
	return e, nil
}

// Codec converts protocol values to and from bytes for one group.
// Decoding rejects non-canonical scalars and invalid points, so encoding a
// decoded value reproduces the input bytes.
type Codec struct {
	group group.Group
}

// NewCodec returns a codec for g.
func NewCodec(g group.Group) *Codec {
	return &Codec{group: g}
}

func (c *Codec) point(data []byte) (group.Point, error) {
	p, err := c.group.NewPoint().SetBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: point: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

func (c *Codec) scalar(data []byte) (group.Scalar, error) {
	s, err := c.group.NewScalar().SetBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: scalar: %v", ErrInvalidEncoding, err)
	}
	return s, nil
}

func (c *Codec) EncodeParticipant(p *dkg.Participant) ([]byte, error) {
	if p.Proof == nil || p.Proof.R == nil || p.Proof.Z == nil {
		return nil, fmt.Errorf("%w: participant %d has no proof", ErrInvalidEncoding, p.Index)
	}
	msg := &ParticipantMessage{
		Index:       p.Index,
		Commitments: make([][]byte, len(p.Commitments)),
		ProofR:      p.Proof.R.Bytes(),
		ProofZ:      p.Proof.Z.Bytes(),
	}
	for k, cm := range p.Commitments {
		msg.Commitments[k] = cm.Bytes()
	}
	return encodeMessage(msg)
}

// DecodeParticipant decodes a round 1 record. The commitment count is not
// checked here; [dkg.DKG.VerifyParticipant] does that.
func (c *Codec) DecodeParticipant(data []byte) (*dkg.Participant, error) {
	msg := &ParticipantMessage{}
	if err := protobuf.Decode(data, msg); err != nil {
		return nil, fmt.Errorf("%w: participant: %v", ErrInvalidEncoding, err)
	}
	p := &dkg.Participant{Index: msg.Index, Commitments: make([]group.Point, len(msg.Commitments))}
	for k, enc := range msg.Commitments {
		pt, err := c.point(enc)
		if err != nil {
			return nil, err
		}
		p.Commitments[k] = pt
	}
	R, err := c.point(msg.ProofR)
	if err != nil {
		return nil, err
	}
	Z, err := c.scalar(msg.ProofZ)
	if err != nil {
		return nil, err
	}
	p.Proof = &dkg.ProofOfKnowledge{R: R, Z: Z}
	return p, nil
}

func (c *Codec) EncodeShare(s *dkg.SecretShare) ([]byte, error) {
	return encodeMessage(&ShareMessage{Sender: s.Sender, Receiver: s.Receiver, Value: s.Value.Bytes()})
}

func (c *Codec) DecodeShare(data []byte) (*dkg.SecretShare, error) {
	msg := &ShareMessage{}
	if err := protobuf.Decode(data, msg); err != nil {
		return nil, fmt.Errorf("%w: share: %v", ErrInvalidEncoding, err)
	}
	v, err := c.scalar(msg.Value)
	if err != nil {
		return nil, err
	}
	return &dkg.SecretShare{Sender: msg.Sender, Receiver: msg.Receiver, Value: v}, nil
}

func (c *Codec) EncodeComplaints(cs []*dkg.Complaint) ([]byte, error) {
	msg := &ComplaintsMessage{Complaints: make([]*ComplaintMessage, len(cs))}
	for i, cm := range cs {
		msg.Complaints[i] = &ComplaintMessage{Accuser: cm.Accuser, Accused: cm.Accused, Reason: uint32(cm.Reason)}
	}
	return encodeMessage(msg)
}

func (c *Codec) DecodeComplaints(data []byte) ([]*dkg.Complaint, error) {
	msg := &ComplaintsMessage{}
	if err := protobuf.Decode(data, msg); err != nil {
		return nil, fmt.Errorf("%w: complaints: %v", ErrInvalidEncoding, err)
	}
	out := make([]*dkg.Complaint, len(msg.Complaints))
	for i, cm := range msg.Complaints {
		reason := dkg.FaultKind(cm.Reason)
		if cm.Reason > 255 || !reason.Valid() {
			return nil, fmt.Errorf("%w: complaint reason %d", ErrInvalidEncoding, cm.Reason)
		}
		out[i] = &dkg.Complaint{Accuser: cm.Accuser, Accused: cm.Accused, Reason: reason}
	}
	return out, nil
}

func (c *Codec) EncodeJustifications(js []*dkg.Justification) ([]byte, error) {
	msg := &JustificationsMessage{Justifications: make([]*JustificationMessage, len(js))}
	for i, j := range js {
		msg.Justifications[i] = &JustificationMessage{Accused: j.Accused, Accuser: j.Accuser, Value: j.Value.Bytes()}
	}
	return encodeMessage(msg)
}

func (c *Codec) DecodeJustifications(data []byte) ([]*dkg.Justification, error) {
	msg := &JustificationsMessage{}
	if err := protobuf.Decode(data, msg); err != nil {
		return nil, fmt.Errorf("%w: justifications: %v", ErrInvalidEncoding, err)
	}
	out := make([]*dkg.Justification, len(msg.Justifications))
	for i, j := range msg.Justifications {
		v, err := c.scalar(j.Value)
		if err != nil {
			return nil, err
		}
		out[i] = &dkg.Justification{Accused: j.Accused, Accuser: j.Accuser, Value: v}
	}
	return out, nil
}

// EncodeKeyMaterial persists a finalized share with its group key.
func (c *Codec) EncodeKeyMaterial(s *dkg.SecretKeyShare, k *dkg.GroupKey) ([]byte, error) {
	return encodeMessage(&KeyMaterialMessage{
		Group:    c.group.Name(),
		Index:    s.Index(),
		Secret:   s.Bytes(),
		GroupKey: k.Bytes(),
	})
}

// DecodeKeyMaterial restores what EncodeKeyMaterial wrote. Data written
// for another group is rejected.
func (c *Codec) DecodeKeyMaterial(data []byte) (*dkg.SecretKeyShare, *dkg.GroupKey, error) {
	msg := &KeyMaterialMessage{}
	if err := protobuf.Decode(data, msg); err != nil {
		return nil, nil, fmt.Errorf("%w: key material: %v", ErrInvalidEncoding, err)
	}
	if msg.Group != c.group.Name() {
		return nil, nil, fmt.Errorf("%w: key material for group %q, want %q", ErrInvalidEncoding, msg.Group, c.group.Name())
	}
	share, err := dkg.NewSecretKeyShare(c.group, msg.Index, msg.Secret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	gk, err := c.point(msg.GroupKey)
	if err != nil {
		return nil, nil, err
	}
	return share, dkg.NewGroupKey(c.group, gk), nil
}
