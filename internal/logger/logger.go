package logger

import (
	"log"

	"github.com/rollbar/rollbar-go"
)

// Logger is used across the app. args are printed after msg; errors and
// map[string]interface{} values are forwarded as-is to Rollbar.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type Options struct {
	Env          string
	Host         string
	RollbarToken string
}

// New returns a logger writing to std. Warnings and errors also go to Rollbar when a token is set.
func New(std *log.Logger, opts Options) Logger {
	if opts.RollbarToken == "" {
		return &StdLogger{std: std}
	}
	rollbar.SetToken(opts.RollbarToken)
	rollbar.SetEnvironment(opts.Env)
	rollbar.SetServerHost(opts.Host)
	rollbar.SetEnabled(true)
	return &RollbarLogger{StdLogger{std: std}}
}

type StdLogger struct {
	std *log.Logger
}

var _ Logger = (*StdLogger)(nil)

func (l StdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		l.std.Printf("  %+v", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

type RollbarLogger struct {
	StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

func prepend(msg string, args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args)+1)
	return append(append(out, msg), args...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(prepend(msg, args)...)
	l.StdLogger.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(prepend(msg, args)...)
	l.StdLogger.Error(msg, args...)
}

// Flush blocks until pending Rollbar items are sent.
func Flush() {
	rollbar.Wait()
}
