package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging surface the client depends on. Arguments
// after the message are alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// New returns a zerolog-backed Logger writing JSON lines to w. Debug events
// are suppressed; use FromZerolog to control the level.
func New(w io.Writer) *ZerologLogger {
	l := zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	return &ZerologLogger{logger: l}
}

// Default returns the logger used when a client is configured without one.
func Default() *ZerologLogger {
	return New(os.Stdout)
}

// FromZerolog wraps an existing zerolog.Logger, keeping its level and output.
func FromZerolog(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

func (z *ZerologLogger) Error(msg string, args ...any) {
	withFields(z.logger.Error(), args).Msg(msg)
}

func (z *ZerologLogger) Warn(msg string, args ...any) {
	withFields(z.logger.Warn(), args).Msg(msg)
}

func (z *ZerologLogger) Info(msg string, args ...any) {
	withFields(z.logger.Info(), args).Msg(msg)
}

func (z *ZerologLogger) Debug(msg string, args ...any) {
	withFields(z.logger.Debug(), args).Msg(msg)
}

func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}
