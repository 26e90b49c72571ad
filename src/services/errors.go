package services

import (
	"errors"
	"fmt"

	"finance/src/schemas"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Error is a domain failure. Message is shown to the user and errors.Is
// matches Kind.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// invalidInput turns a form validation failure into ErrInvalidInput, keeping
// any other error as is.
func invalidInput(err error) error {
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: ErrInvalidInput, Message: verr.Message}
	}
	return err
}
