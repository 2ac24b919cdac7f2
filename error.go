package scgiexec

import (
	"fmt"
	"io"
)

// Status lines used in error responses. The front-end server relays the
// response verbatim, so these carry the HTTP-style semantics.
const (
	StatusInternalError = "500 Internal Error"
	StatusInvalidHeader = "500 Invalid SCGI header"
	StatusNotFound      = "404 Not Found"
)

// Error is a fatal pipeline error with the status line and message
// to report back over the connection.
type Error struct {
	Status  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// Errorf creates an Error with a formatted message.
func Errorf(status, format string, args ...any) *Error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// toError converts err to an *Error, defaulting to a 500.
func toError(err error) *Error {
	if serr, ok := err.(*Error); ok {
		return serr
	}
	return Errorf(StatusInternalError, "%s", err)
}

// WriteResponse writes the minimal CGI-style error response for e to w:
// a Status line, a text/plain content type, a blank line and the message.
func (e *Error) WriteResponse(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Status: %s\r\nContent-Type: text/plain\r\n\r\n%s\r\n", e.Status, e.Message)
	return err
}
