package identity

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces synthetic transaction ids.
type Generator interface {
	Next() string
}

// Sequence is a monotonic counter scoped to the whole session.
// It is never reset between uploads, so ids stay unique across batches.
type Sequence struct {
	namespace string
	next      atomic.Uint64
}

// NewSequence returns a Sequence producing "<namespace>-0", "<namespace>-1", ...
func NewSequence(namespace string) *Sequence {
	return &Sequence{namespace: namespace}
}

// Next returns the next id in the sequence.
func (s *Sequence) Next() string {
	n := s.next.Add(1) - 1
	return fmt.Sprintf("%s-%d", s.namespace, n)
}

// UUIDs generates random version 4 UUIDs.
type UUIDs struct{}

// Next returns a new random UUID string.
func (UUIDs) Next() string {
	return uuid.New().String()
}

// SessionNamespace returns a short random namespace for a Sequence so that
// ids from different sessions do not collide either.
func SessionNamespace(prefix string) string {
	token := uuid.New().String()[:8]
	if prefix == "" {
		return token
	}
	return prefix + "-" + token
}
