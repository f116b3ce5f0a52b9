package model

import "errors"

var (
	// ErrAmbiguousAlias is returned when a surface form resolves to more than
	// one existing canonical entity. This is a configuration inconsistency and
	// the candidate must be flagged for manual review, never merged silently.
	ErrAmbiguousAlias = errors.New("alias resolves to multiple canonical entities")

	// ErrEntityNotFound is returned when no canonical entity matches a lookup
	ErrEntityNotFound = errors.New("entity not found")
)
