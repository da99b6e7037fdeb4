package store

// Store is the document store contract the rating engines run against.
// Collections hold JSON documents addressed by id; writes go through batches
// that apply atomically on Commit.
type Store interface {
	// Collections lists all collection names, sorted.
	Collections() ([]string, error)
	// Get returns a document, or nil when absent.
	Get(collection, id string) (*Document, error)
	// GetMulti fetches many documents, chunking requests to GetMultiChunk
	// ids per round-trip. Missing ids are silently omitted.
	GetMulti(collection string, ids []string) ([]Document, error)
	// Query returns documents matching all equality filters, ordered by the
	// optional orderBy field and then by insertion order.
	Query(collection string, filters []Filter, orderBy string) ([]Document, error)
	// Batch starts an empty write batch.
	Batch() Batch
}

// Batch accumulates write operations. Nothing is visible until Commit, which
// fails if more than HardBatchCap operations were enqueued.
type Batch interface {
	Set(collection, id string, doc any)
	Update(collection, id string, patch Patch)
	Delete(collection, id string)
	Len() int
	Commit() error
}

// Filter is an equality constraint on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Patch maps dotted field paths to replacement values. Wrap a value with
// Inc to add to the stored number instead of replacing it.
type Patch map[string]any

// Increment marks a patch value as additive.
type Increment struct{ By int64 }

// Inc returns an additive patch value.
func Inc(n int64) Increment { return Increment{By: n} }

const (
	// HardBatchCap is the store's per-commit operation limit. Writers must
	// flush strictly below it.
	HardBatchCap = 500
	// GetMultiChunk caps ids per GetMulti round-trip.
	GetMultiChunk = 100
)
