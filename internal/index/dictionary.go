package index

// PostingList holds the internal ids of every document containing a term.
// Ids are stored in insertion (ascending) order and always read
// newest-first, so a traversal from position 0 is strictly descending.
// Appending keeps the O(1) head-insert cost of the classic linked
// representation without a heap allocation per node.
type PostingList struct {
	ids []uint32
}

// Add records a document id. The builder assigns ids from a monotonic
// counter, so ids always arrive in strictly ascending order and the
// descending read order is preserved by construction.
func (p *PostingList) Add(id uint32) {
	p.ids = append(p.ids, id)
}

// Len returns the number of postings.
func (p *PostingList) Len() int {
	return len(p.ids)
}

// At returns the i-th id in descending order; At(0) is the most recently
// indexed document.
func (p *PostingList) At(i int) uint32 {
	return p.ids[len(p.ids)-1-i]
}

// DocIDs returns a new slice with the ids in descending order.
func (p *PostingList) DocIDs() []uint32 {
	out := make([]uint32, len(p.ids))
	for i := range out {
		out[i] = p.ids[len(p.ids)-1-i]
	}
	return out
}

// Entry is the dictionary record for one distinct term. DocFreq always
// equals the postings length: a document contributes at most one posting
// per term because type collection deduplicates per document.
type Entry struct {
	Term     string
	DocFreq  int
	Postings PostingList
}

// Dictionary maps each distinct term to its entry. Entries are created on
// first occurrence, mutated in place afterwards, and never removed during
// an indexing pass.
type Dictionary struct {
	entries map[string]*Entry
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]*Entry)}
}

// Insert records that the document with the given internal id contains the
// term. A new entry starts at frequency 1 with a single posting; an
// existing entry has its frequency incremented and the id prepended.
func (d *Dictionary) Insert(term string, docID uint32) {
	e, ok := d.entries[term]
	if !ok {
		e = &Entry{Term: term}
		d.entries[term] = e
	}
	e.DocFreq++
	e.Postings.Add(docID)
}

// Lookup returns the entry for a term, if any.
func (d *Dictionary) Lookup(term string) (*Entry, bool) {
	e, ok := d.entries[term]
	return e, ok
}

// Terms returns the number of distinct terms.
func (d *Dictionary) Terms() int {
	return len(d.entries)
}

// Snapshot is a completed, immutable index: the term dictionary plus the
// id resolution table. A snapshot is built once, to completion, and then
// shared by any number of concurrent readers without locking.
type Snapshot struct {
	Dict     *Dictionary
	Resolver *Resolver

	// Docs counts every record seen by the build, including skipped ones.
	Docs int
}
