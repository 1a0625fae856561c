// Package blagerr provides the classified error type used across blag.
//
// Every failure a build can surface carries a Kind so callers can decide how
// to report it, plus a small context map (usually the offending path):
//
//	err := blagerr.Wrap(cause, blagerr.KindIO, "read post").
//		WithContext("path", path).
//		Build()
package blagerr

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind classifies an error.
type Kind string

const (
	KindIO                 Kind = "io"
	KindMalformedPost      Kind = "malformed_post"
	KindInvalidFrontMatter Kind = "invalid_front_matter"
	KindFormatter          Kind = "formatter"
	KindRender             Kind = "render"
	KindConfig             Kind = "config"
	KindConflict           Kind = "conflict"
)

// Context holds structured details attached to an error.
type Context map[string]any

// Error is a classified error with an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
	context Context
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.kind, e.message)
	for _, k := range slices.Sorted(maps.Keys(e.context)) {
		fmt.Fprintf(&b, " %s=%v", k, e.context[k])
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Message() string { return e.message }

// Is matches another *Error of the same kind and message.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.kind == other.kind && e.message == other.message
	}
	return false
}

// Builder assembles an Error.
type Builder struct {
	err Error
}

// New starts a builder for an error without a cause.
func New(kind Kind, message string) *Builder {
	return &Builder{err: Error{kind: kind, message: message}}
}

// Wrap starts a builder for an error caused by err.
func Wrap(err error, kind Kind, message string) *Builder {
	return &Builder{err: Error{kind: kind, message: message, cause: err}}
}

func (b *Builder) WithContext(key string, value any) *Builder {
	if b.err.context == nil {
		b.err.context = make(Context)
	}
	b.err.context[key] = value
	return b
}

func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// HasKind reports whether any classified error in err's chain has kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok && ce.kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or the empty Kind if there is none.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.kind
	}
	return ""
}

// Path returns the "path" context of the outermost classified error that has
// one.
func Path(err error) (string, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			if p, ok := ce.context["path"].(string); ok {
				return p, true
			}
		}
		err = errors.Unwrap(err)
	}
	return "", false
}
