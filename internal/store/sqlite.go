package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// sqliteStore keeps every collection in a single documents table with JSON
// bodies. Seq is assigned by the table's autoincrement and therefore reflects
// insertion order across the whole store.
type sqliteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a Store over an initialized database (see internal/database).
func New(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Collections() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *sqliteStore) Get(collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT seq, data FROM documents WHERE collection = ? AND id = ?", collection, id)
	doc := Document{ID: id}
	if err := row.Scan(&doc.Seq, &doc.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

func (s *sqliteStore) GetMulti(collection string, ids []string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for start := 0; start < len(ids); start += GetMultiChunk {
		end := start + GetMultiChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := append([]any{collection}, toAnySlice(chunk)...)
		rows, err := s.db.Query(
			"SELECT id, seq, data FROM documents WHERE collection = ? AND id IN ("+placeholders+") ORDER BY seq",
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("get multi %s: %w", collection, err)
		}
		for rows.Next() {
			var doc Document
			if err := rows.Scan(&doc.ID, &doc.Seq, &doc.Data); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, doc)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

func (s *sqliteStore) Query(collection string, filters []Filter, orderBy string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, seq, data FROM documents WHERE collection = ?"
	args := []any{collection}
	for _, f := range filters {
		query += " AND json_extract(data, ?) = ?"
		args = append(args, "$."+f.Field, f.Value)
	}
	if orderBy != "" {
		query += " ORDER BY json_extract(data, ?), seq"
		args = append(args, "$."+orderBy)
	} else {
		query += " ORDER BY seq"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Seq, &doc.Data); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Batch() Batch {
	return &sqliteBatch{store: s}
}

type sqliteBatch struct {
	store *sqliteStore
	ops   []op
}

func (b *sqliteBatch) Set(collection, id string, doc any) {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
}

func (b *sqliteBatch) Update(collection, id string, patch Patch) {
	b.ops = append(b.ops, op{kind: opUpdate, collection: collection, id: id, patch: patch})
}

func (b *sqliteBatch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
}

func (b *sqliteBatch) Len() int { return len(b.ops) }

// Commit applies all staged operations in one transaction.
func (b *sqliteBatch) Commit() error {
	if len(b.ops) > HardBatchCap {
		return fmt.Errorf("batch of %d operations exceeds cap of %d", len(b.ops), HardBatchCap)
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	for _, o := range b.ops {
		if err := b.apply(tx, o); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	log.Debug("Batch committed", "operations", len(b.ops))
	b.ops = nil
	return nil
}

func (b *sqliteBatch) apply(tx *sql.Tx, o op) error {
	switch o.kind {
	case opSet:
		data, err := json.Marshal(o.doc)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", o.collection, o.id, err)
		}
		_, err = tx.Exec(`
			INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
			ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
		`, o.collection, o.id, string(data))
		if err != nil {
			return fmt.Errorf("set %s/%s: %w", o.collection, o.id, err)
		}
	case opUpdate:
		expr, args, err := buildPatchExpr(o.patch)
		if err != nil {
			return fmt.Errorf("patch %s/%s: %w", o.collection, o.id, err)
		}
		args = append(args, o.collection, o.id)
		res, err := tx.Exec("UPDATE documents SET data = "+expr+" WHERE collection = ? AND id = ?", args...)
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", o.collection, o.id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("update %s/%s: document missing", o.collection, o.id)
		}
	case opDelete:
		if _, err := tx.Exec("DELETE FROM documents WHERE collection = ? AND id = ?", o.collection, o.id); err != nil {
			return fmt.Errorf("delete %s/%s: %w", o.collection, o.id, err)
		}
	}
	return nil
}

// buildPatchExpr turns a Patch into a nested json_set expression. Paths are
// applied in sorted order so patch application is deterministic.
func buildPatchExpr(patch Patch) (string, []any, error) {
	paths := make([]string, 0, len(patch))
	for path := range patch {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	expr := "data"
	var args []any
	for _, path := range paths {
		jsonPath := "$." + path
		if inc, ok := patch[path].(Increment); ok {
			expr = fmt.Sprintf("json_set(%s, ?, COALESCE(json_extract(data, ?), 0) + ?)", expr)
			args = append(args, jsonPath, jsonPath, inc.By)
			continue
		}
		raw, err := json.Marshal(patch[path])
		if err != nil {
			return "", nil, err
		}
		expr = fmt.Sprintf("json_set(%s, ?, json(?))", expr)
		args = append(args, jsonPath, string(raw))
	}
	return expr, args, nil
}

func toAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
