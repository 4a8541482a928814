// ABOUTME: Error handling for dendro, re-exporting github.com/cockroachdb/errors.
// ABOUTME: Defines the sentinel kinds raised by the clustering pipeline.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
	Mark        = crdb.Mark
)

// User-facing hints
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is    = crdb.Is
	IsAny = crdb.IsAny
	As    = crdb.As
)

// Sentinel kinds. Match them with Is; wrapped errors keep their kind.
var (
	// ErrInvalidInput means the rows or options handed to the pipeline are unusable.
	ErrInvalidInput = New("invalid input")

	// ErrEmbeddingLookup means a token has no embedding and no fallback vector applies.
	ErrEmbeddingLookup = New("embedding lookup failure")

	// ErrMalformedTree means linkage output broke the merge tree id ordering.
	ErrMalformedTree = New("malformed merge tree")
)

// InvalidInputf builds an error of kind ErrInvalidInput.
func InvalidInputf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidInput)
}

// EmbeddingLookupf builds an error of kind ErrEmbeddingLookup.
func EmbeddingLookupf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrEmbeddingLookup)
}

// MalformedTreef builds an error of kind ErrMalformedTree.
func MalformedTreef(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrMalformedTree)
}
