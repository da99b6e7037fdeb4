package store

// Document is a stored record: JSON body plus the store-assigned monotonic
// insertion sequence. Seq is the stable tie-break for replay ordering.
type Document struct {
	ID   string
	Seq  int64
	Data []byte
}

// op is one staged batch operation.
type op struct {
	kind       opKind
	collection string
	id         string
	doc        any
	patch      Patch
}

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)
