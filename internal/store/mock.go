package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Mock is an in-memory Store honoring the same contract as the sqlite
// implementation. It backs the engine tests and the CLI's dry runs.
type Mock struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Document
	seq         int64

	// CommitErr, when set, fails the next batch commit and then clears.
	CommitErr error
}

// NewMock creates an empty in-memory store.
func NewMock() *Mock {
	return &Mock{collections: make(map[string]map[string]*Document)}
}

func (m *Mock) Collections() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Mock) Get(collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	cp.Data = append([]byte(nil), doc.Data...)
	return &cp, nil
}

func (m *Mock) GetMulti(collection string, ids []string) ([]Document, error) {
	var out []Document
	for start := 0; start < len(ids); start += GetMultiChunk {
		end := start + GetMultiChunk
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			doc, err := m.Get(collection, id)
			if err != nil {
				return nil, err
			}
			if doc != nil {
				out = append(out, *doc)
			}
		}
	}
	return out, nil
}

func (m *Mock) Query(collection string, filters []Filter, orderBy string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, doc := range m.collections[collection] {
		fields, err := decodeFields(doc.Data)
		if err != nil {
			return nil, err
		}
		if !matchesFilters(fields, filters) {
			continue
		}
		cp := *doc
		cp.Data = append([]byte(nil), doc.Data...)
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if orderBy != "" {
			fi, _ := decodeFields(out[i].Data)
			fj, _ := decodeFields(out[j].Data)
			c := compareValues(fi[orderBy], fj[orderBy])
			if c != 0 {
				return c < 0
			}
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (m *Mock) Batch() Batch {
	return &mockBatch{store: m}
}

type mockBatch struct {
	store *Mock
	ops   []op
}

func (b *mockBatch) Set(collection, id string, doc any) {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
}

func (b *mockBatch) Update(collection, id string, patch Patch) {
	b.ops = append(b.ops, op{kind: opUpdate, collection: collection, id: id, patch: patch})
}

func (b *mockBatch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
}

func (b *mockBatch) Len() int { return len(b.ops) }

func (b *mockBatch) Commit() error {
	if len(b.ops) > HardBatchCap {
		return fmt.Errorf("batch of %d operations exceeds cap of %d", len(b.ops), HardBatchCap)
	}
	m := b.store
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommitErr != nil {
		err := m.CommitErr
		m.CommitErr = nil
		return err
	}
	for _, o := range b.ops {
		coll := m.collections[o.collection]
		if coll == nil {
			coll = make(map[string]*Document)
			m.collections[o.collection] = coll
		}
		switch o.kind {
		case opSet:
			data, err := json.Marshal(o.doc)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", o.collection, o.id, err)
			}
			if existing, ok := coll[o.id]; ok {
				existing.Data = data
			} else {
				m.seq++
				coll[o.id] = &Document{ID: o.id, Seq: m.seq, Data: data}
			}
		case opUpdate:
			existing, ok := coll[o.id]
			if !ok {
				return fmt.Errorf("update %s/%s: document missing", o.collection, o.id)
			}
			patched, err := applyPatch(existing.Data, o.patch)
			if err != nil {
				return fmt.Errorf("patch %s/%s: %w", o.collection, o.id, err)
			}
			existing.Data = patched
		case opDelete:
			delete(coll, o.id)
		}
	}
	b.ops = nil
	return nil
}

func decodeFields(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func matchesFilters(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if compareValues(fields[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders JSON field values; numbers compare numerically, all
// else by string form.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// applyPatch applies dotted-path sets and increments to a JSON document body.
func applyPatch(data []byte, patch Patch) ([]byte, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return nil, err
	}
	for path, value := range patch {
		parts := strings.Split(path, ".")
		node := fields
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if inc, ok := value.(Increment); ok {
			current, _ := toFloat(node[leaf])
			node[leaf] = current + float64(inc.By)
			continue
		}
		// Round-trip through JSON so typed structs land as plain maps,
		// matching what a Set of the whole document would store.
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		node[leaf] = decoded
	}
	return json.Marshal(fields)
}
