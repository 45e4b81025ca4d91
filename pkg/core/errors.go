package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure raised by a Collection or Session.
type Kind string

const (
	// KindExtension is a hook or key generator failure.
	KindExtension Kind = "extension"
	// KindValidation is a rejection from the validation pipeline.
	KindValidation Kind = "validation"
	// KindConflict is an add over a key that already holds data.
	KindConflict Kind = "conflict"
	// KindNotFound is an update or remove of a key without data.
	KindNotFound Kind = "not_found"
	// KindInternal is an adapter failure.
	KindInternal Kind = "internal"
)

// Common errors.
var (
	ErrExtension         = errors.New("extension failed")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("item already exists")
	ErrNotFound          = errors.New("item not found")
	ErrInternal          = errors.New("internal error")
	ErrNotRegistered     = errors.New("collection not registered")
	ErrAlreadyRegistered = errors.New("collection already registered")
)

var kindSentinels = map[Kind]error{
	KindExtension:  ErrExtension,
	KindValidation: ErrValidation,
	KindConflict:   ErrConflict,
	KindNotFound:   ErrNotFound,
	KindInternal:   ErrInternal,
}

// Error is the error type returned by Collection and Session operations.
// errors.Is matches it against the sentinel of its Kind.
type Error struct {
	Kind       Kind
	Op         string // add, update, remove, find, flush, commit, rollback
	Step       string // e.g. beforeAdd, validate, generateKey, adapter.find
	Collection string
	Key        string
	Action     Action
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Collection != "" {
		b.WriteString(" " + e.Collection)
		if e.Key != "" {
			b.WriteString("/" + e.Key)
		}
	} else if e.Key != "" {
		b.WriteString(" " + e.Key)
	}
	if e.Step != "" {
		b.WriteString(" (" + e.Step + ")")
	}
	b.WriteString(": ")
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// withCollection tags err with the collection name, keeping its Kind.
func withCollection(op, name string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	if kind == "" {
		kind = KindInternal
	}
	return &Error{
		Kind:       kind,
		Op:         op,
		Collection: name,
		Msg:        fmt.Sprintf("collection %q failed", name),
		Err:        err,
	}
}
