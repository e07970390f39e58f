// Package logger is the logging interface of pms components.
//
// `*github.com/labstack/gommon/log.Logger` and `echo.Logger` satisfy Logger.
package logger

import (
	"github.com/labstack/gommon/log"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// New returns a logger writing with prefix, at level.
func New(prefix string, level log.Lvl) *log.Logger {
	l := log.New(prefix)
	l.SetLevel(level)
	return l
}

type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}

// Discard drops all logs.
func Discard() Logger {
	return discard{}
}
