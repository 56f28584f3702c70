package logger

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Logger is a small facade over the underlying logging backend.
// Methods accept a message (event name in snake_case) and structured key/value fields.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// Options controls logger construction.
type Options struct {
	// Out is the primary destination for human-facing logs. Defaults to os.Stderr.
	Out io.Writer
	// Level is one of: "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// Format controls primary output: "auto" (default), "pretty", or "json".
	// When "auto", TTY → pretty; non-TTY → json.
	Format string
	// NoColor disables color in pretty output. For JSON it has no effect.
	NoColor bool
	// LogFile, when set, enables an additional JSON sink written to this path.
	LogFile string
	// ReportTimestamp toggles timestamps on the primary sink. Default: true.
	ReportTimestamp *bool
	// Quiet discards the primary sink. The dashboard sets it so log lines never
	// land on the alt screen; the file sink, if any, still receives everything.
	Quiet bool
}

// New constructs a Logger according to Options. It may create an additional
// file sink when Options.LogFile is provided. The returned closer should be
// invoked on process exit to flush/close any resources (it is a no-op if nil).
func New(opts Options) (Logger, io.Closer, error) {
	primaryOut := opts.Out
	if primaryOut == nil {
		primaryOut = os.Stderr
	}
	if opts.Quiet {
		primaryOut = io.Discard
	}

	// Build primary sink
	var primary Logger
	{
		formatter := chooseFormatter(primaryOut, opts.Format)
		lvl := parseLevel(opts.Level)
		cl := clog.NewWithOptions(primaryOut, clog.Options{})
		cl.SetLevel(lvl)
		cl.SetFormatter(formatter)
		if opts.ReportTimestamp == nil || *opts.ReportTimestamp {
			cl.SetReportTimestamp(true)
		} else {
			cl.SetReportTimestamp(false)
		}
		if opts.NoColor {
			// Best-effort: many Charm libs respect NO_COLOR; set it here.
			_ = os.Setenv("NO_COLOR", "1")
		}
		primary = &charmLogger{l: cl}
	}

	// Optional file sink
	var closer io.Closer
	var sinks []Logger
	sinks = append(sinks, primary)
	if strings.TrimSpace(opts.LogFile) != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		fl := clog.NewWithOptions(f, clog.Options{})
		fl.SetLevel(parseLevel(opts.Level))
		fl.SetFormatter(chooseFormatter(f, opts.Format))
		// File logs default to no timestamps for machine parsing (unless pretty format is explicitly requested)
		fl.SetReportTimestamp(opts.Format == "pretty" || opts.Format == "text")
		sinks = append(sinks, &charmLogger{l: fl})
		closer = f
	}

	if len(sinks) == 1 {
		return sinks[0], closer, nil
	}
	return &multiLogger{sinks: sinks}, closer, nil
}

func chooseFormatter(w io.Writer, format string) clog.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return clog.JSONFormatter
	case "pretty", "text":
		return clog.TextFormatter
	default:
		if f, ok := w.(*os.File); ok {
			if isatty.IsTerminal(f.Fd()) {
				return clog.TextFormatter
			}
		}
		return clog.JSONFormatter
	}
}

func parseLevel(s string) clog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

type charmLogger struct{ l *clog.Logger }

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, redactPairs(keyvals)...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, redactPairs(keyvals)...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, redactPairs(keyvals)...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, redactPairs(keyvals)...) }
func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(redactPairs(keyvals)...)}
}

type multiLogger struct{ sinks []Logger }

func (m *multiLogger) Debug(msg string, keyvals ...any) {
	for _, s := range m.sinks {
		s.Debug(msg, keyvals...)
	}
}
func (m *multiLogger) Info(msg string, keyvals ...any) {
	for _, s := range m.sinks {
		s.Info(msg, keyvals...)
	}
}
func (m *multiLogger) Warn(msg string, keyvals ...any) {
	for _, s := range m.sinks {
		s.Warn(msg, keyvals...)
	}
}
func (m *multiLogger) Error(msg string, keyvals ...any) {
	for _, s := range m.sinks {
		s.Error(msg, keyvals...)
	}
}
func (m *multiLogger) With(keyvals ...any) Logger {
	next := make([]Logger, 0, len(m.sinks))
	for _, s := range m.sinks {
		next = append(next, s.With(keyvals...))
	}
	return &multiLogger{sinks: next}
}

// Step brackets one call against the card office API with started/ok/failed
// events that share the same keys.
type Step struct {
	logger   Logger
	action   string // snake_case event name, e.g. "status_fetch"
	register string
	started  time.Time
	base     []any
}

// StartStep logs a started event and returns a Step that can be finalized with OK/Fail.
// Stable keys: action, register_number, status, duration_ms.
func StartStep(l Logger, action string, registerNumber string, extra ...any) *Step {
	s := &Step{logger: l, action: action, register: registerNumber, started: time.Now(), base: redactPairs(extra)}
	fields := append([]any{
		"status", "started",
		"action", action,
		"register_number", registerNumber,
	}, s.base...)
	s.logger.Debug(action, fields...)
	return s
}

// OK marks the step as successful.
func (s *Step) OK(extra ...any) {
	fields := append([]any{
		"status", "ok",
		"action", s.action,
		"register_number", s.register,
		"duration_ms", time.Since(s.started).Milliseconds(),
	}, redactPairs(extra)...)
	s.logger.Info(s.action, fields...)
}

// Fail logs the failure once with error details and returns the provided error unchanged.
func (s *Step) Fail(err error, extra ...any) error {
	fields := append([]any{
		"status", "failed",
		"action", s.action,
		"register_number", s.register,
		"duration_ms", time.Since(s.started).Milliseconds(),
	}, redactPairs(extra)...)
	if err != nil {
		fields = append(fields, "error", redactError(err))
	}
	s.logger.Error(s.action, fields...)
	return err
}

// Redaction ---------------------------------------------------------------

// redactPairs scrubs sensitive values in k/v pairs. Keys containing the
// sensitive substrings will have their value replaced with "[REDACTED]".
func redactPairs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if isSensitiveKey(key) {
			out[i+1] = "[REDACTED]"
		} else if v, ok := out[i+1].(string); ok {
			out[i+1] = redactText(v)
		}
	}
	return out
}

func isSensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	return strings.Contains(lower, "password") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret") ||
		strings.Contains(lower, "apikey") ||
		strings.Contains(lower, "api_key") ||
		strings.Contains(lower, "private") ||
		strings.Contains(lower, "authorization") ||
		strings.Contains(lower, "key") && !strings.Contains(lower, "keyboard")
}

var (
	secretLike = regexp.MustCompile(`(?i)(token|secret|password|apikey|api_key)\s*[:=]\s*([A-Za-z0-9\-\._]+)`)
	bearerLike = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-\._~+/]+=*`)
)

func redactText(s string) string {
	s = secretLike.ReplaceAllString(s, "$1=[REDACTED]")
	return bearerLike.ReplaceAllString(s, "Bearer [REDACTED]")
}

func redactError(err error) string {
	if err == nil {
		return ""
	}
	return redactText(err.Error())
}

// Context -----------------------------------------------------------------

type ctxKey struct{}

// WithContext returns a derived context carrying the logger.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger from context or a no-op logger if absent.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Nop()
	}
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(Logger); ok && l != nil {
			return l
		}
	}
	return Nop()
}

// Nop returns a Logger that discards all logs.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) With(...any) Logger   { return nopLogger{} }

// NewSessionID returns a fresh identifier attached to every log line of one
// tracking session (one register number for one process lifetime).
func NewSessionID() string {
	return uuid.NewString()
}
