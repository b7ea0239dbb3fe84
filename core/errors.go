package core

import (
	"fmt"
	"regexp"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// ErrorList accumulates the diagnostics for one source file. Every stage of
// the pipeline appends to the same list and keeps going, so a single run
// surfaces as many problems as possible; the driver checks OK() before it
// writes any artifacts.
type ErrorList struct {
	file string
	errs *multierror.Error
}

// NewErrorList returns an empty list for the named file.
func NewErrorList(file string) *ErrorList {
	return &ErrorList{
		file: file,
		errs: &multierror.Error{ErrorFormat: listFormat},
	}
}

func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d errors:\n%s", len(errs), strings.Join(lines, "\n"))
}

// File is the name this list reports against.
func (l *ErrorList) File() string { return l.file }

// Errorf records a diagnostic against a source line. Line 0 means the
// diagnostic has no single line (end-of-pass checks).
func (l *ErrorList) Errorf(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		l.errs = multierror.Append(l.errs, fmt.Errorf("%s:%d: %s", l.file, line, msg))
	} else {
		l.errs = multierror.Append(l.errs, fmt.Errorf("%s: %s", l.file, msg))
	}
}

// psec reports locations as "name line L col C: message". The passes parse
// one line at a time, so the embedded location is always line 1 of whatever
// string was handed over; strip it and keep the real line number instead.
var psecLoc = regexp.MustCompile(`^.* line \d+ col \d+:\s*`)

// ParseError records a parser failure against a source line, normalizing the
// parser's own location prefix away.
func (l *ErrorList) ParseError(line int, err error) {
	l.Errorf(line, "%s", psecLoc.ReplaceAllString(err.Error(), ""))
}

// OK reports whether no diagnostics have been recorded.
func (l *ErrorList) OK() bool { return l.errs.ErrorOrNil() == nil }

// Len is the number of recorded diagnostics.
func (l *ErrorList) Len() int { return len(l.errs.Errors) }

// All returns the recorded diagnostics in order.
func (l *ErrorList) All() []error { return l.errs.Errors }

// Err returns the aggregate error, or nil when the list is empty.
func (l *ErrorList) Err() error { return l.errs.ErrorOrNil() }
