// internal/app/store/storeerr/storeerr.go

// Package storeerr classifies storage failures into a small set of kinds so
// callers branch on meaning instead of matching driver error strings.
//
// The kinds are deliberately coarse. KindRelationshipMissing is the one
// subtle case: it marks a schema-level inability to serve a declared join
// (the related namespace cannot be resolved), which is recoverable by
// re-fetching flat. It is never raised for an empty result.
package storeerr

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind is the classified meaning of a storage failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindRelationshipMissing: the store cannot serve a declared join.
	KindRelationshipMissing
	// KindNotFound: the requested document does not exist.
	KindNotFound
	// KindConflict: a uniqueness constraint rejected the write.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindRelationshipMissing:
		return "relationship_missing"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with an explicit kind.
func New(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// Aggregation error codes the server raises when a $lookup target cannot
// be resolved (sharded-unsupported, namespace unresolvable, cross-db).
var relationshipCodes = map[int32]bool{
	28769: true,
	51047: true,
	40602: true,
}

// KindOf classifies err, looking through wrapping. Explicit kinds set via
// New win; otherwise driver errors are inspected.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return KindNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return KindConflict
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && relationshipCodes[ce.Code] {
		return KindRelationshipMissing
	}

	return KindUnknown
}

// IsRelationshipMissing reports whether err means a declared join cannot
// be served.
func IsRelationshipMissing(err error) bool {
	return KindOf(err) == KindRelationshipMissing
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err means a uniqueness violation.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
