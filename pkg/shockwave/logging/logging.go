// Package logging wires structured logging for the engine: logrus is the
// primary sink, and a small adapter exposes it as an hclog.Logger so
// components written against that interface (as some of the dependency
// ecosystem is) plug in without a second logging stack.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger configured for the given level name
// ("trace", "debug", "info", "warn", "error"; unrecognised values fall
// back to "info") and JSON output, matching the structured-logging
// convention the rest of the ambient stack expects.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// HCLogBridge adapts a *logrus.Logger to the hclog.Logger interface so
// dependencies that expect hclog (rather than logrus directly) can share
// the same sink and fields instead of writing to their own output.
type HCLogBridge struct {
	l    *logrus.Logger
	name string
	args []interface{}
}

// NewHCLogBridge wraps l as an hclog.Logger.
func NewHCLogBridge(l *logrus.Logger) hclog.Logger {
	return &HCLogBridge{l: l}
}

var _ hclog.Logger = (*HCLogBridge)(nil)

func (b *HCLogBridge) entry() *logrus.Entry {
	e := b.l.WithField("name", b.name)
	for i := 0; i+1 < len(b.args); i += 2 {
		key, ok := b.args[i].(string)
		if !ok {
			continue
		}
		e = e.WithField(key, b.args[i+1])
	}
	return e
}

func (b *HCLogBridge) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		b.entry().Debug(msg)
	case hclog.Info:
		b.entry().Info(msg)
	case hclog.Warn:
		b.entry().Warn(msg)
	case hclog.Error:
		b.entry().Error(msg)
	}
}

func (b *HCLogBridge) Trace(msg string, args ...interface{}) { b.entry().Debug(msg) }
func (b *HCLogBridge) Debug(msg string, args ...interface{}) { b.entry().Debug(msg) }
func (b *HCLogBridge) Info(msg string, args ...interface{})  { b.entry().Info(msg) }
func (b *HCLogBridge) Warn(msg string, args ...interface{})  { b.entry().Warn(msg) }
func (b *HCLogBridge) Error(msg string, args ...interface{}) { b.entry().Error(msg) }

func (b *HCLogBridge) IsTrace() bool { return b.l.IsLevelEnabled(logrus.DebugLevel) }
func (b *HCLogBridge) IsDebug() bool { return b.l.IsLevelEnabled(logrus.DebugLevel) }
func (b *HCLogBridge) IsInfo() bool  { return b.l.IsLevelEnabled(logrus.InfoLevel) }
func (b *HCLogBridge) IsWarn() bool  { return b.l.IsLevelEnabled(logrus.WarnLevel) }
func (b *HCLogBridge) IsError() bool { return b.l.IsLevelEnabled(logrus.ErrorLevel) }

func (b *HCLogBridge) ImpliedArgs() []interface{} { return b.args }

func (b *HCLogBridge) With(args ...interface{}) hclog.Logger {
	return &HCLogBridge{l: b.l, name: b.name, args: append(append([]interface{}{}, b.args...), args...)}
}

func (b *HCLogBridge) Name() string { return b.name }

func (b *HCLogBridge) Named(name string) hclog.Logger {
	return &HCLogBridge{l: b.l, name: name, args: b.args}
}

func (b *HCLogBridge) ResetNamed(name string) hclog.Logger {
	return b.Named(name)
}

func (b *HCLogBridge) SetLevel(level hclog.Level) {
	switch level {
	case hclog.Trace, hclog.Debug:
		b.l.SetLevel(logrus.DebugLevel)
	case hclog.Info:
		b.l.SetLevel(logrus.InfoLevel)
	case hclog.Warn:
		b.l.SetLevel(logrus.WarnLevel)
	case hclog.Error:
		b.l.SetLevel(logrus.ErrorLevel)
	case hclog.Off, hclog.NoLevel:
		b.l.SetLevel(logrus.PanicLevel)
	}
}

func (b *HCLogBridge) GetLevel() hclog.Level {
	switch b.l.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return hclog.Debug
	case logrus.InfoLevel:
		return hclog.Info
	case logrus.WarnLevel:
		return hclog.Warn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return hclog.Error
	default:
		return hclog.NoLevel
	}
}

func (b *HCLogBridge) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(b.l.Writer(), "", 0)
}

func (b *HCLogBridge) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return b.l.Writer()
}
