// Package herr defines the error taxonomy shared across hyperion's
// storage, indexing and query layers.
package herr

import "fmt"

// Kind classifies a hyperion error.
type Kind int

const (
	// KindPath marks a malformed textual path.
	KindPath Kind = iota
	// KindNotFound marks a read/delete of an absent endpoint.
	KindNotFound
	// KindInvalidOperation marks an empty path, a type conflict during
	// entity reconstruction, an unknown function, an incompatible
	// comparison, or a their-path used outside a where clause.
	KindInvalidOperation
	// KindSerialization marks a codec encode failure.
	KindSerialization
	// KindDeserialization marks a codec decode failure.
	KindDeserialization
	// KindInternal marks a KV failure, channel closure, or similar.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "PathError"
	case KindNotFound:
		return "NotFound"
	case KindInvalidOperation:
		return "InvalidOperation"
	case KindSerialization:
		return "SerializationError"
	case KindDeserialization:
		return "DeserializationError"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every exported hyperion
// operation. Msg carries the human-readable detail; Err, when non-nil, is
// the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, herr.NotFound("")) style checks by kind only:
// two *Error values match if their Kind matches, regardless of Msg/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// PathError reports a malformed textual path.
func PathError(format string, args ...any) *Error {
	return newf(KindPath, format, args...)
}

// NotFound reports a read/delete of an absent path.
func NotFound(path string) *Error {
	return newf(KindNotFound, "path not found: %s", path)
}

// InvalidOperation reports a semantic violation (empty path, type
// conflict, unknown function, incompatible comparison, their outside
// where).
func InvalidOperation(format string, args ...any) *Error {
	return newf(KindInvalidOperation, format, args...)
}

// Serialization reports a codec encode failure.
func Serialization(format string, args ...any) *Error {
	return newf(KindSerialization, format, args...)
}

// Deserialization reports a codec decode failure.
func Deserialization(format string, args ...any) *Error {
	return newf(KindDeserialization, format, args...)
}

// Internal reports a KV failure, channel closure, or lock poisoning
// equivalent.
func Internal(format string, args ...any) *Error {
	return newf(KindInternal, format, args...)
}

// Wrap attaches a cause to an existing *Error, returning a new *Error of
// the same kind.
func Wrap(e *Error, cause error) *Error {
	return &Error{Kind: e.Kind, Msg: e.Msg, Err: cause}
}

// Is* helpers for callers that only want to branch on kind.

func IsNotFound(err error) bool {
	var e *Error
	return asError(err, &e) && e.Kind == KindNotFound
}

func IsInvalidOperation(err error) bool {
	var e *Error
	return asError(err, &e) && e.Kind == KindInvalidOperation
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
