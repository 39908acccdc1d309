package zin

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LogInterceptor receives every diagnostic message written by the facade
// and the builder. It may be called from any goroutine and must not block.
type LogInterceptor interface {
	OnLog(message string)
}

// LogFunc adapts a function to LogInterceptor.
type LogFunc func(message string)

// OnLog calls f.
func (f LogFunc) OnLog(message string) {
	f(message)
}

type noopInterceptor struct{}

func (noopInterceptor) OnLog(string) {}

// LogLevel controls whether messages reach the LogInterceptor.
type LogLevel int

const (
	// LogFull forwards every message.
	LogFull LogLevel = iota

	// LogNone forwards nothing.
	LogNone
)

func (l LogLevel) String() string {
	switch l {
	case LogFull:
		return "full"
	case LogNone:
		return "none"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// ParseLogLevel parses "full" or "none". An empty string is LogFull.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return LogFull, nil
	case "none":
		return LogNone, nil
	default:
		return LogFull, newConfigError("log_level", s)
	}
}

type zerologInterceptor struct {
	logger zerolog.Logger
}

// ZerologInterceptor forwards messages to logger at debug level.
func ZerologInterceptor(logger zerolog.Logger) LogInterceptor {
	return &zerologInterceptor{
		logger: logger.With().Str("component", "zin").Logger(),
	}
}

func (z *zerologInterceptor) OnLog(message string) {
	z.logger.Debug().Msg(message)
}

// logger gates an interceptor by level.
type logger struct {
	out   LogInterceptor
	level LogLevel
}

// logf formats and forwards a message. A panicking interceptor loses the
// message and nothing else.
func (l logger) logf(format string, args ...any) {
	if l.level == LogNone || l.out == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	_ = protectErr(func() error {
		l.out.OnLog(msg)
		return nil
	})
}
