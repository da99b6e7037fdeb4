package recompute

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arttusulkonen/paddletracker-sub000/internal/league"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// backupDoc is one archived document body.
type backupDoc struct {
	Collection string `msgpack:"collection"`
	ID         string `msgpack:"id"`
	Data       []byte `msgpack:"data"`
}

// backupArchive is the pre-recompute snapshot of a sport's documents, written
// before the first batch commits so a bad run can be diffed against the
// prior state.
type backupArchive struct {
	Sport     string      `msgpack:"sport"`
	CreatedAt int64       `msgpack:"created_at"`
	Documents []backupDoc `msgpack:"documents"`
}

func (e *Engine) writeBackup(sport league.Sport, players []*league.Player, rooms []*league.Room, matches []*league.Match) error {
	archive := backupArchive{
		Sport:     string(sport),
		CreatedAt: e.now().Unix(),
	}
	for _, p := range players {
		doc, err := marshalDoc(league.PlayersCollection(sport), p.ID, p)
		if err != nil {
			return err
		}
		archive.Documents = append(archive.Documents, doc)
	}
	for _, r := range rooms {
		doc, err := marshalDoc(league.RoomsCollection(sport), r.ID, r)
		if err != nil {
			return err
		}
		archive.Documents = append(archive.Documents, doc)
	}
	for _, m := range matches {
		doc, err := marshalDoc(league.MatchesCollection(sport), m.ID, m)
		if err != nil {
			return err
		}
		archive.Documents = append(archive.Documents, doc)
	}

	payload, err := msgpack.Marshal(archive)
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := os.MkdirAll(e.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	name := filepath.Join(e.backupDir, fmt.Sprintf("recompute-%s-%d.msgpack", sport, archive.CreatedAt))
	if err := os.WriteFile(name, payload, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	log.Info("Wrote pre-recompute backup", "sport", sport, "file", name, "documents", len(archive.Documents))
	return nil
}

func marshalDoc(collection, id string, v any) (backupDoc, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return backupDoc{}, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return backupDoc{Collection: collection, ID: id, Data: data}, nil
}
