// Package logging builds the zerolog loggers used by sessions, the
// simulator and the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable holding the default level.
const EnvLevel = "FYDKG_LOG"

const participantField = "participant"

var (
	mu   sync.Mutex
	base = newBase(os.Stderr, levelFromEnv())
)

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    out != os.Stderr && out != os.Stdout,
		TimeFormat: time.RFC3339,
		FormatPrepare: func(e map[string]interface{}) error {
			if v, ok := e[participantField]; ok {
				e[participantField] = fmt.Sprintf("[%v]", v)
			} else {
				e[participantField] = "[-]"
			}
			return nil
		},
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			participantField,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{participantField},
	}
}

func newBase(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(consoleWriter(out)).Level(level).With().Timestamp().Logger()
}

func levelFromEnv() zerolog.Level {
	level, err := ParseLevel(os.Getenv(EnvLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// ParseLevel maps a level name to a zerolog level. The empty string is
// info; "no" and "off" disable logging.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return zerolog.InfoLevel, nil
	case "no", "off", "disabled":
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
	return level, nil
}

// Configure replaces the process logger. A nil out keeps stderr.
func Configure(level zerolog.Level, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	base = newBase(out, level)
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base
}

// ForParticipant returns the process logger tagged with index.
func ForParticipant(index uint32) zerolog.Logger {
	return Logger().With().Uint32(participantField, index).Logger()
}
