package index

import "github.com/RoaringBitmap/roaring/v2"

// Resolver maps internal document ids back to the caller-facing external
// ids. It is positionally sparse: ids belonging to skipped records have no
// entry and are never resolved, because by construction they appear in no
// postings list. Presence is tracked in a roaring bitmap so holes stay
// distinguishable from records whose external id happens to be empty.
type Resolver struct {
	external []string
	present  *roaring.Bitmap
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{present: roaring.New()}
}

// Put records the external id for an internal id. Positions between the
// previous high-water mark and id remain holes.
func (r *Resolver) Put(id uint32, externalID string) {
	for uint32(len(r.external)) <= id {
		r.external = append(r.external, "")
	}
	r.external[id] = externalID
	r.present.Add(id)
}

// Resolve returns the external id for an internal id. The second return is
// false for holes.
func (r *Resolver) Resolve(id uint32) (string, bool) {
	if !r.present.Contains(id) {
		return "", false
	}
	return r.external[id], true
}

// Len returns the number of resolvable (successfully indexed) documents.
func (r *Resolver) Len() int {
	return int(r.present.GetCardinality())
}
