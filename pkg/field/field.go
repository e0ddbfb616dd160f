// Package field defines the signed-distance field abstraction behind
// collision queries. A Field reports signed distance and outward gradient
// in its own unscaled local frame; colliders refer to externally owned
// fields through opaque Ref identifiers resolved via a Lookup. The field
// abstraction allows swapping backends (closed-form analytic fields, the
// sdfx CSG backend) without changing the query layer.
package field

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Ref identifies externally owned field data. The zero value is not a
// valid reference.
type Ref string

// Field is a signed-distance field evaluated in its own unscaled local
// frame. Distance is negative inside the surface. Gradient points away
// from the surface and has unit length wherever the field is smooth;
// implementations must return a defined fallback direction, never NaN,
// where it is not.
type Field interface {
	// Distance returns the signed distance from p to the zero level set.
	Distance(p mgl64.Vec3) float64

	// Gradient returns the outward surface direction at p.
	Gradient(p mgl64.Vec3) mgl64.Vec3

	// Bounds returns the axis-aligned bounding box of the zero level set
	// in the local frame.
	Bounds() (min, max mgl64.Vec3)
}

// Lookup resolves references to field data for the duration of one query.
// A failed resolution is an expected outcome, not an error: callers
// degrade to "no contact" or "no hit".
type Lookup interface {
	Get(ref Ref) (Field, bool)
}

// Processed is the event delivered by the host when the data behind a
// reference has been rebuilt. Colliders holding a matching reference must
// be marked stale so the host re-queries their bounds and contacts.
type Processed struct {
	Ref Ref
}

// Compile-time interface check.
var _ Lookup = (*Store)(nil)

// Store is a Lookup backed by a mutex-guarded map. Reads may run
// concurrently with registration; fields themselves must be immutable
// once registered, so no lock is held while a field is being evaluated.
type Store struct {
	mu     sync.RWMutex
	fields map[Ref]Field
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{fields: make(map[Ref]Field)}
}

// Get returns the field registered behind ref, if any.
func (s *Store) Get(ref Ref) (Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[ref]
	return f, ok
}

// Put registers or replaces the field behind ref.
func (s *Store) Put(ref Ref, f Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[ref] = f
}

// Delete removes ref from the store. Deleting an unknown ref is a no-op.
func (s *Store) Delete(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fields, ref)
}

// Refs returns the registered references in unspecified order.
func (s *Store) Refs() []Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]Ref, 0, len(s.fields))
	for ref := range s.fields {
		refs = append(refs, ref)
	}
	return refs
}

// Len returns the number of registered fields.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}
