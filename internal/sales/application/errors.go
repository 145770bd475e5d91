package application

import "errors"

// Kind classifies an operation failure so the transport boundary can map it to
// a client-fault or server-fault response without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindStockUnavailable
	KindNotFound
	KindExternal
	KindPersistence
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func validationErr(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFoundErr(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func stockUnavailableErr(msg string) error {
	return &Error{Kind: KindStockUnavailable, Message: msg}
}

func persistenceErr(msg string, err error) error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf extracts the failure class of err. Anything unrecognized is internal,
// which the boundary renders as a server fault.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
