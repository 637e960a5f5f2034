package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this module's loaders, optimizer and
// engine matches exactly one of these through errors.Is.
var (
	ErrConfig = errors.New("invalid configuration")
	ErrFormat = errors.New("malformed edge list")
	ErrIO     = errors.New("edge list unreadable")
	ErrRange  = errors.New("node out of range")
)

// Error carries structured context for a failed graph operation.
type Error struct {
	Op      string // Operation that failed (e.g., "load", "inspect")
	Kind    error  // One of ErrConfig, ErrFormat, ErrIO, ErrRange
	Node    int    // Node id, valid when HasNode is set
	HasNode bool
	Line    int    // 1-based line number for format errors
	Source  string // File path, URI or table the data came from
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.HasNode {
		fmt.Fprintf(&b, " node %d", e.Node)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	kind := "error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	fmt.Fprintf(&b, ": %s", kind)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind or matches its cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.Kind == target {
		return true
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder for the given operation and kind.
func NewError(op string, kind error) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op, Kind: kind}}
}

// Node records the node id involved.
func (b *ErrorBuilder) Node(id int) *ErrorBuilder {
	b.err.Node = id
	b.err.HasNode = true
	return b
}

// Line records the offending line number.
func (b *ErrorBuilder) Line(n int) *ErrorBuilder {
	b.err.Line = n
	return b
}

// Source records where the data came from.
func (b *ErrorBuilder) Source(src string) *ErrorBuilder {
	b.err.Source = src
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// NodeNotFoundError reports a query for a node id absent from the graph.
func NodeNotFoundError(op string, node int) error {
	return NewError(op, ErrRange).Node(node).Err()
}

// FormatError reports a malformed edge-list line.
func FormatError(source string, line int, context string) error {
	return NewError("parse", ErrFormat).Source(source).Line(line).Context(context).Err()
}

// IOError reports a missing or unreadable edge-list source.
func IOError(op, source string, cause error) error {
	return NewError(op, ErrIO).Source(source).Cause(cause).Err()
}

// ConfigError reports a degenerate configuration value.
func ConfigError(op, context string) error {
	return NewError(op, ErrConfig).Context(context).Err()
}
