package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// sqliteTx implements types.Tx over a database/sql transaction.
type sqliteTx struct {
	tx       *sql.Tx
	writable bool
}

// keyArgs returns the primary key columns for a record.
func keyArgs(kiosk types.ID, key types.Key) []any {
	return []any{kiosk.String(), key.Kind.String(), key.Item.String(), boolToInt(key.Exclusive)}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (t *sqliteTx) Add(kiosk types.ID, key types.Key, rec types.Record) error {
	if !t.writable {
		return types.ErrReadOnly
	}
	ok, err := t.Exists(kiosk, key)
	if err != nil {
		return err
	}
	if ok {
		return types.ErrKeyExists
	}
	args := append(keyArgs(kiosk, key), rec.Type, rec.Data)
	if _, err := t.tx.Exec(qInsert, args...); err != nil {
		return fmt.Errorf("inserting %s: %w", key, err)
	}
	return nil
}

func (t *sqliteTx) Get(kiosk types.ID, key types.Key) (types.Record, error) {
	var rec types.Record
	err := t.tx.QueryRow(qSelect, keyArgs(kiosk, key)...).Scan(&rec.Type, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, types.ErrNotFound
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("scanning %s: %w", key, err)
	}
	return rec, nil
}

func (t *sqliteTx) Put(kiosk types.ID, key types.Key, rec types.Record) error {
	if !t.writable {
		return types.ErrReadOnly
	}
	args := append(keyArgs(kiosk, key), rec.Type, rec.Data)
	if _, err := t.tx.Exec(qUpsert, args...); err != nil {
		return fmt.Errorf("upserting %s: %w", key, err)
	}
	return nil
}

func (t *sqliteTx) Remove(kiosk types.ID, key types.Key) (types.Record, error) {
	if !t.writable {
		return types.Record{}, types.ErrReadOnly
	}
	rec, err := t.Get(kiosk, key)
	if err != nil {
		return types.Record{}, err
	}
	if _, err := t.tx.Exec(qDelete, keyArgs(kiosk, key)...); err != nil {
		return types.Record{}, fmt.Errorf("deleting %s: %w", key, err)
	}
	return rec, nil
}

func (t *sqliteTx) Exists(kiosk types.ID, key types.Key) (bool, error) {
	var one int
	err := t.tx.QueryRow(qExists, keyArgs(kiosk, key)...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

func (t *sqliteTx) Keys(kiosk types.ID) ([]types.Key, error) {
	rows, err := t.tx.Query(qKeys, kiosk.String())
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []types.Key
	for rows.Next() {
		var kind, item string
		var exclusive int
		if err := rows.Scan(&kind, &item, &exclusive); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		k, err := parseKey(kind, item, exclusive)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (t *sqliteTx) Namespaces() ([]types.ID, error) {
	rows, err := t.tx.Query(qNamespaces)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var ids []types.ID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		id, err := types.ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// parseKey rebuilds a Key from its column values.
func parseKey(kind, item string, exclusive int) (types.Key, error) {
	k, err := types.ParseKind(kind)
	if err != nil {
		return types.Key{}, err
	}
	id, err := types.ParseID(item)
	if err != nil {
		return types.Key{}, err
	}
	return types.Key{Kind: k, Item: id, Exclusive: exclusive == 1}, nil
}
