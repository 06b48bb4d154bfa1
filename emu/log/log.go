// Package log provides per-module logging on top of logrus.
//
// Warnings and errors are always emitted. Debug and info messages are only
// emitted for modules enabled with EnableDebugModules.
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors logrus levels: lower is more severe.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (lvl Level) String() string {
	return logrus.Level(lvl).String()
}

var disabled bool

// Disable turns off all logging, including warnings and errors.
func Disable() {
	disabled = true
}

// SetOutput sets the destination of all log entries.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// A ContextAdder adds fields to every log entry, for example the emulated
// program counter.
type ContextAdder interface {
	AddLogContext(entry *EntryZ)
}

var contexts []ContextAdder

// AddContext registers c so that it contributes to all subsequent entries.
func AddContext(c ContextAdder) {
	contexts = append(contexts, c)
}

// RemoveContext unregisters c.
func RemoveContext(c ContextAdder) {
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}
