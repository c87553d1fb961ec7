package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for turnguard. Users can
// provide their own implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ModelCallLogger is implemented by loggers that record structured model
// call outcomes. The gateway emits through it when the configured Logger
// supports it.
type ModelCallLogger interface {
	LogModelCall(provider string, attempt int, dur time.Duration, err error)
}

// VerdictLogger is implemented by loggers that record structured guardrail
// verdicts.
type VerdictLogger interface {
	LogVerdict(check string, allowed bool, category, reason string)
}

// TurnEventLogger is implemented by loggers that record the terminal state
// of a processed turn.
type TurnEventLogger interface {
	LogTurn(state string, dur time.Duration, err error)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a TurnLogger.
type LoggerConfig struct {
	Level  LogLevel
	Format string // json or text
	Output io.Writer
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// TurnLogger wraps slog.Logger adding conversation/turn context and pipeline
// specific helpers. It is cheap to copy via the With* methods.
type TurnLogger struct {
	logger         *slog.Logger
	level          LogLevel
	conversationID string
	turnID         string
	component      string
}

// NewLogger builds a TurnLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *TurnLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &TurnLogger{logger: slog.New(handler), level: cfg.Level}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent sets the logical component (orchestrator, gateway, agent name).
func (l *TurnLogger) WithComponent(c string) *TurnLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithTurn attaches conversation and turn identifiers.
func (l *TurnLogger) WithTurn(conversationID, turnID string) *TurnLogger {
	nl := *l
	nl.conversationID = conversationID
	nl.turnID = turnID
	return &nl
}

func (l *TurnLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+3)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.conversationID != "" {
		out = append(out, slog.String("conversation_id", l.conversationID))
	}
	if l.turnID != "" {
		out = append(out, slog.String("turn_id", l.turnID))
	}
	return append(out, extra...)
}

func (l *TurnLogger) log(level slog.Level, msg string, args ...any) {
	l.logger.LogAttrs(context.Background(), level, msg, append(l.attrs(), argsToAttrs(args)...)...)
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}

// Debug logs at debug level.
func (l *TurnLogger) Debug(msg string, args ...any) {
	if l.level <= LogLevelDebug {
		l.log(slog.LevelDebug, msg, args...)
	}
}

// Info logs at info level.
func (l *TurnLogger) Info(msg string, args ...any) {
	if l.level <= LogLevelInfo {
		l.log(slog.LevelInfo, msg, args...)
	}
}

// Warn logs at warn level.
func (l *TurnLogger) Warn(msg string, args ...any) {
	if l.level <= LogLevelWarn {
		l.log(slog.LevelWarn, msg, args...)
	}
}

// Error logs at error level.
func (l *TurnLogger) Error(msg string, args ...any) {
	if l.level <= LogLevelError {
		l.log(slog.LevelError, msg, args...)
	}
}

// LogModelCall records latency and outcome of a remote generation call.
func (l *TurnLogger) LogModelCall(provider string, attempt int, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.String("provider", provider),
		slog.Int("attempt", attempt),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	)
	level := slog.LevelInfo
	msg := "model call completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelWarn
		msg = "model call failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogVerdict records the outcome of a guardrail check.
func (l *TurnLogger) LogVerdict(check string, allowed bool, category, reason string) {
	attrs := l.attrs(
		slog.String("check", check),
		slog.Bool("allowed", allowed),
		slog.String("category", category),
	)
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	level := slog.LevelInfo
	msg := "guardrail check passed"
	if !allowed {
		level = slog.LevelWarn
		msg = "guardrail check blocked"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogTurn records the terminal state and duration of a processed turn.
func (l *TurnLogger) LogTurn(state string, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.String("state", state),
		slog.Duration("duration", dur),
	)
	level := slog.LevelInfo
	msg := "turn completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelWarn
		msg = "turn rejected"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
