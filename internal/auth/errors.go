package auth

import (
	"errors"
	"time"
)

// Error is a domain error carrying the HTTP status it maps to. Handlers
// serialize it uniformly; anything that is not an *Error surfaces as a
// generic internal error.
type Error struct {
	Status   int
	Message  string
	Fields   map[string]string
	UnlockAt *time.Time
}

func (e *Error) Error() string { return e.Message }

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error      { return newError(400, message) }
func Unauthorized(message string) *Error    { return newError(401, message) }
func Forbidden(message string) *Error       { return newError(403, message) }
func NotFound(message string) *Error        { return newError(404, message) }
func Conflict(message string) *Error        { return newError(409, message) }
func Internal(message string) *Error        { return newError(500, message) }
func TooManyRequests(message string) *Error { return newError(429, message) }

// Locked is a TooManyRequests error carrying the end of the lockout window.
func Locked(message string, unlockAt time.Time) *Error {
	e := TooManyRequests(message)
	e.UnlockAt = &unlockAt
	return e
}

func (e *Error) WithField(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
	return e
}

// AsError unwraps err into a domain *Error if it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
