package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Logger writes leveled lines, either human readable or JSON. A Logger is
// safe for concurrent use; components derive scoped loggers with Named.
type Logger struct {
	min  Level
	json bool
	name string
	mu   *sync.Mutex
	out  io.Writer
}

func New(level string, jsonOut bool) *Logger {
	out := io.Writer(os.Stderr)
	if jsonOut {
		out = os.Stdout
	}
	return NewWriter(out, level, jsonOut)
}

// NewWriter returns a Logger writing to out.
func NewWriter(out io.Writer, level string, jsonOut bool) *Logger {
	return &Logger{min: ParseLevel(level), json: jsonOut, out: out, mu: &sync.Mutex{}}
}

// Discard returns a Logger that drops everything. The TUI uses it so log
// lines do not corrupt the screen.
func Discard() *Logger { return NewWriter(io.Discard, "error", false) }

// Named returns a copy of l whose lines carry the component name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	if c.name != "" {
		name = c.name + "." + name
	}
	c.name = name
	return &c
}

func (l *Logger) Enabled(v Level) bool { return l != nil && v >= l.min }

func (l *Logger) Debugf(format string, a ...any) { l.log(Debug, format, a...) }
func (l *Logger) Infof(format string, a ...any)  { l.log(Info, format, a...) }
func (l *Logger) Warnf(format string, a ...any)  { l.log(Warn, format, a...) }
func (l *Logger) Errorf(format string, a ...any) { l.log(Error, format, a...) }

func (l *Logger) log(level Level, format string, a ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, a...)
	lvl := levelString(level)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.json {
		payload := map[string]any{
			"ts":    time.Now().Format(time.RFC3339Nano),
			"level": lvl,
			"msg":   msg,
		}
		if l.name != "" {
			payload["component"] = l.name
		}
		_ = json.NewEncoder(l.out).Encode(payload)
		return
	}
	if l.name != "" {
		fmt.Fprintf(l.out, "%s\t[%s] %s\n", strings.ToUpper(lvl), l.name, msg)
		return
	}
	fmt.Fprintf(l.out, "%s\t%s\n", strings.ToUpper(lvl), msg)
}

func levelString(l Level) string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}
