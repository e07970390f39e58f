// Package errors wraps errors with the location where they are wrapped.
//
//	wrapped := xe.Wrap(err)
//
// The message of a wrapped error reads as a chain of locations:
//
//	@ pkg.Func "file.go" l12 <- @ pkg.Other "other.go" l40 <- root cause
//
// Wrapped errors support errors.Is and errors.As through Unwrap.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

func (e *ErrWithCaller) File() string {
	return e.file
}

func (e *ErrWithCaller) Line() int {
	return e.line
}

func (e *ErrWithCaller) Func() string {
	return e.funcname
}

func (e *ErrWithCaller) Error() string {
	if e.note == "" {
		return fmt.Sprintf(`@ %s "%s" l%d <- %s`, e.funcname, e.file, e.line, e.err.Error())
	}
	return fmt.Sprintf(`@ %s "%s" l%d (%s) <- %s`, e.funcname, e.file, e.line, e.note, e.err.Error())
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

// New creates an error with text, located at the caller.
func New(text string) error {
	return wrap("", errors.New(text), 1)
}

// Errorf is fmt.Errorf located at the caller.
func Errorf(format string, args ...any) error {
	return wrap("", fmt.Errorf(format, args...), 1)
}

// Wrap locates err at the caller. nil stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return wrap("", err, 1)
}

// WrapAsOuter locates err at the caller's caller, depth frames above.
func WrapAsOuter(err error, depth int) error {
	if err == nil {
		return nil
	}
	return wrap("", err, depth+1)
}

func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return wrap(note, err, 1)
}

func wrap(note string, err error, depth int) error {
	pc, file, line, ok := runtime.Caller(depth + 1)
	funcname := "(unknown func)"
	if !ok {
		file = "?"
		line = -1
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcname = fn.Name()
	}

	return &ErrWithCaller{
		funcname: funcname,
		file:     file,
		line:     line,
		note:     note,
		err:      err,
	}
}

// Message is the message of the root cause of err, without locations.
func Message(err error) string {
	if err == nil {
		return ""
	}
	m := err.Error()
	if i := strings.LastIndex(m, " <- "); 0 <= i {
		return m[i+len(" <- "):]
	}
	return m
}
