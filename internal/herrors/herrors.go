// Package herrors implements the closed error taxonomy shared across hybridgrep's
// components: Transient, Input, Data, and Fatal kinds, each with a stable discriminator.
package herrors

import "fmt"

// Category groups an ErrorKind into one of the four propagation classes.
type Category int

const (
	CategoryTransient Category = iota
	CategoryInput
	CategoryData
	CategoryFatal
)

func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryInput:
		return "input"
	case CategoryData:
		return "data"
	case CategoryFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind is a stable, closed discriminator for every error the core can return.
type Kind string

const (
	// Transient — callers may retry.
	KindModelNotLoaded   Kind = "ModelNotLoaded"
	KindBuildInProgress  Kind = "BuildInProgress"
	KindInferenceTimeout Kind = "InferenceTimeout"

	// Input — surfaced to caller, do not abort index state.
	KindInvalidQuery      Kind = "InvalidQuery"
	KindUnknownFilePath   Kind = "UnknownFilePath"
	KindDimensionMismatch Kind = "DimensionMismatch"

	// Data — accumulated per entry, build continues.
	KindParseError Kind = "ParseError"
	KindWalkError  Kind = "WalkError"

	// Fatal — abort current operation, previous Ready snapshot (if any) stays intact.
	KindRootNotFound        Kind = "RootNotFound"
	KindFullTextCommitFailed Kind = "FullTextCommitFailed"
	KindCachePersistFailed   Kind = "CachePersistFailed"
	KindSerializationError   Kind = "SerializationError"

	// Additional kinds needed by the orchestrator's state machine and query surface.
	KindNoIndex   Kind = "NoIndex"
	KindCancelled Kind = "Cancelled"
)

var categories = map[Kind]Category{
	KindModelNotLoaded:   CategoryTransient,
	KindBuildInProgress:  CategoryTransient,
	KindInferenceTimeout: CategoryTransient,

	KindInvalidQuery:      CategoryInput,
	KindUnknownFilePath:   CategoryInput,
	KindDimensionMismatch: CategoryInput,

	KindParseError: CategoryData,
	KindWalkError:  CategoryData,

	KindRootNotFound:        CategoryFatal,
	KindFullTextCommitFailed: CategoryFatal,
	KindCachePersistFailed:   CategoryFatal,
	KindSerializationError:   CategoryFatal,

	KindNoIndex:   CategoryInput,
	KindCancelled: CategoryFatal,
}

// Category returns the propagation class for a Kind, defaulting to Fatal for any
// kind not in the closed enumeration (fail safe rather than silently continue).
func (k Kind) Category() Category {
	if c, ok := categories[k]; ok {
		return c
	}
	return CategoryFatal
}

// HybridError is the single error type crossing every command boundary in the core.
type HybridError struct {
	Kind Kind
	Path string // offending path, if any
	Msg  string
	Err  error
}

func (e *HybridError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Kind, e.Msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *HybridError) Unwrap() error {
	return e.Err
}

// New builds a HybridError with no wrapped cause.
func New(kind Kind, msg string) *HybridError {
	return &HybridError{Kind: kind, Msg: msg}
}

// Wrap builds a HybridError carrying an underlying cause.
func Wrap(kind Kind, msg string, err error) *HybridError {
	return &HybridError{Kind: kind, Msg: msg, Err: err}
}

// WithPath attaches the offending path to a HybridError, returning a new value.
func WithPath(kind Kind, path, msg string, err error) *HybridError {
	return &HybridError{Kind: kind, Path: path, Msg: msg, Err: err}
}

// Is reports whether err is a HybridError of the given Kind.
func Is(err error, kind Kind) bool {
	var he *HybridError
	for err != nil {
		if h, ok := err.(*HybridError); ok {
			he = h
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return he != nil && he.Kind == kind
}
