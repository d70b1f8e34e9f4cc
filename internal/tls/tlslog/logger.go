// Package tlslog provides the small leveled, tag-scoped logger used across
// the TLS engine. It has no dependency on the handshake or record code so
// that every layer can log without import cycles.
package tlslog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

const envVar = "TLSCORE_LOGLEVEL"

const timestampFormat = "2006-01-02 15:04:05.000"

var levelColor = map[Level]*color.Color{
	Error: color.New(color.FgRed),
	Warn:  color.New(color.FgYellow),
	Info:  color.New(color.FgCyan),
	Debug: color.New(color.FgWhite),
}

// Logger writes leveled, tag-scoped log lines. The zero value is not usable;
// derive one from Default via WithTag.
type Logger struct {
	Level Level
	Tag   string

	out io.Writer
	mu  *sync.Mutex
}

// Default is the package-wide logger, configured from TLSCORE_LOGLEVEL at
// init time. Defaults to Info if unset or unparsable.
var Default = &Logger{Level: Info, out: os.Stderr, mu: new(sync.Mutex)}

func init() {
	if s := os.Getenv(envVar); s != "" {
		if level, err := parseLevel(s); err == nil {
			Default.Level = level
		} else {
			fmt.Fprintf(os.Stderr, "tlslog: %v\n", err)
		}
	}
}

// WithTag derives a logger sharing this logger's level and output but
// tagging every line, e.g. Default.WithTag("record").
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{Level: l.Level, Tag: tag, out: l.out, mu: l.mu}
}

// SetDestination overrides where this logger (and loggers derived from it
// via WithTag) writes.
func (l *Logger) SetDestination(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

func (l *Logger) log(level Level, format string, a ...interface{}) {
	if level > l.Level {
		return
	}

	c, ok := levelColor[level]
	if !ok {
		c = color.New(color.FgWhite)
	}

	var prefix string
	if l.Tag != "" {
		prefix = fmt.Sprintf("%s %s/%s ", time.Now().Format(timestampFormat), level, l.Tag)
	} else {
		prefix = fmt.Sprintf("%s %s ", time.Now().Format(timestampFormat), level)
	}

	msg := fmt.Sprintf(format, a...)
	if n := len(msg); n == 0 || msg[n-1] != '\n' {
		msg += "\n"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	c.Fprint(l.out, prefix)
	fmt.Fprint(l.out, msg)
}

func (l *Logger) Error(format string, a ...interface{}) { l.log(Error, format, a...) }
func (l *Logger) Warn(format string, a ...interface{})  { l.log(Warn, format, a...) }
func (l *Logger) Info(format string, a ...interface{})  { l.log(Info, format, a...) }
func (l *Logger) Debug(format string, a ...interface{}) { l.log(Debug, format, a...) }
