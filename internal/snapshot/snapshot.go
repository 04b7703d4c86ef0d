// Package snapshot exports the contents of an attachment store to a JSONL
// file and loads such a file back. Any backend can be the source or the
// target, which makes it the migration path between backends.
package snapshot

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/kiosk/pkg/kiosk"
	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// maxLine bounds a single JSONL line. Item payloads larger than this cannot
// be imported.
const maxLine = 4 << 20

// line is one record in the snapshot file.
type line struct {
	Kiosk     string `json:"kiosk"`
	Kind      string `json:"kind"`
	Item      string `json:"item"`
	Exclusive bool   `json:"exclusive,omitempty"`
	Type      string `json:"type"`
	Data      []byte `json:"data"`
}

// Stats reports how many records a snapshot operation handled.
type Stats struct {
	Kiosks  int `json:"kiosks"`
	Records int `json:"records"`
	Skipped int `json:"skipped"`
}

// Export writes every record in s to path, ordered by kiosk then key.
func Export(s types.Store, path string) (Stats, error) {
	var stats Stats
	var out []json.RawMessage

	err := s.View(func(tx types.Tx) error {
		kiosks, err := tx.Namespaces()
		if err != nil {
			return err
		}
		slices.SortFunc(kiosks, func(a, b types.ID) int { return slices.Compare(a[:], b[:]) })

		for _, id := range kiosks {
			keys, err := tx.Keys(id)
			if err != nil {
				return err
			}
			slices.SortFunc(keys, func(a, b types.Key) int {
				return slices.Compare(a.Bytes(), b.Bytes())
			})
			for _, key := range keys {
				rec, err := tx.Get(id, key)
				if err != nil {
					return fmt.Errorf("reading %s %s: %w", id, key, err)
				}
				b, err := json.Marshal(line{
					Kiosk:     id.String(),
					Kind:      key.Kind.String(),
					Item:      key.Item.String(),
					Exclusive: key.Exclusive,
					Type:      rec.Type,
					Data:      rec.Data,
				})
				if err != nil {
					return err
				}
				out = append(out, b)
			}
			stats.Kiosks++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	if err := writeJSONL(path, out); err != nil {
		return Stats{}, err
	}
	stats.Records = len(out)
	return stats, nil
}

// Import loads the records in path into s in one transaction. Existing
// records with the same key are replaced. Lines that do not parse as
// records are skipped and counted.
//
// Every kiosk the file touches is checked with kiosk.Check after its
// records are written, against the merged state when the target already
// holds that kiosk. A failed check aborts the whole import.
func Import(s types.Store, path string) (Stats, error) {
	raw, err := readJSONL(path)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	kiosks := make(map[types.ID]struct{})
	err = s.Update(func(tx types.Tx) error {
		for _, r := range raw {
			id, key, rec, ok := parseLine(r)
			if !ok {
				stats.Skipped++
				continue
			}
			if err := tx.Put(id, key, rec); err != nil {
				return fmt.Errorf("loading %s %s: %w", id, key, err)
			}
			kiosks[id] = struct{}{}
			stats.Records++
		}
		for id := range kiosks {
			if err := kiosk.Check(tx, id); err != nil {
				return fmt.Errorf("importing kiosk %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	stats.Kiosks = len(kiosks)
	return stats, nil
}

func parseLine(raw json.RawMessage) (types.ID, types.Key, types.Record, bool) {
	var l line
	if err := json.Unmarshal(raw, &l); err != nil {
		return types.NilID, types.Key{}, types.Record{}, false
	}
	id, err := types.ParseID(l.Kiosk)
	if err != nil {
		return types.NilID, types.Key{}, types.Record{}, false
	}
	kind, err := types.ParseKind(l.Kind)
	if err != nil {
		return types.NilID, types.Key{}, types.Record{}, false
	}
	item, err := types.ParseID(l.Item)
	if err != nil || l.Type == "" {
		return types.NilID, types.Key{}, types.Record{}, false
	}
	key := types.Key{Kind: kind, Item: item, Exclusive: l.Exclusive}
	return id, key, types.Record{Type: l.Type, Data: l.Data}, true
}
