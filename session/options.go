package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/f3rmion/fydkg/dkg"
)

// DefaultTimeout bounds every barrier when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config fixes the parameters of one participant.
type Config struct {
	Threshold uint32
	Total     uint32
	Index     uint32

	// Timeout bounds the wait at each barrier. Peers that stay silent
	// past it are treated as absent.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Tamper alters outgoing protocol values before they are encoded. It
// exists to exercise fault handling; honest participants leave it empty.
type Tamper struct {
	Participant   func(p *dkg.Participant)
	Share         func(s *dkg.SecretShare)
	Justification func(j *dkg.Justification)
}

// Option configures a Participant.
type Option func(*Participant)

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Participant) { p.log = log }
}

// WithHasher selects the proof of knowledge challenge hash.
func WithHasher(h dkg.Hasher) Option {
	return func(p *Participant) { p.hasher = h }
}

// WithTamper installs hooks that corrupt outgoing values.
func WithTamper(t Tamper) Option {
	return func(p *Participant) { p.tamper = t }
}
