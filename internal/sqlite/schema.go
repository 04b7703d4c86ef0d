package sqlite

// Schema DDL for the attachment table. Records are keyed by kiosk namespace
// plus the (kind, item, exclusive) tuple.
const (
	createAttachments = `CREATE TABLE IF NOT EXISTS attachments (
    kiosk_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    item_id TEXT NOT NULL,
    exclusive INTEGER NOT NULL,
    type_tag TEXT NOT NULL,
    data BLOB NOT NULL,
    PRIMARY KEY (kiosk_id, kind, item_id, exclusive)
);`

	idxAttachmentsKiosk = `CREATE INDEX IF NOT EXISTS idx_attachments_kiosk ON attachments(kiosk_id);`
	idxAttachmentsType  = `CREATE INDEX IF NOT EXISTS idx_attachments_type ON attachments(type_tag);`
)

// schemaDDL lists all statements executed on Attach, in order.
var schemaDDL = []string{
	createAttachments,
	idxAttachmentsKiosk,
	idxAttachmentsType,
}

// Queries used by sqliteTx.
const (
	qSelect = `SELECT type_tag, data FROM attachments
WHERE kiosk_id = ? AND kind = ? AND item_id = ? AND exclusive = ?`
	qExists = `SELECT 1 FROM attachments
WHERE kiosk_id = ? AND kind = ? AND item_id = ? AND exclusive = ?`
	qInsert = `INSERT INTO attachments (kiosk_id, kind, item_id, exclusive, type_tag, data)
VALUES (?, ?, ?, ?, ?, ?)`
	qUpsert = `INSERT INTO attachments (kiosk_id, kind, item_id, exclusive, type_tag, data)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (kiosk_id, kind, item_id, exclusive)
DO UPDATE SET type_tag = excluded.type_tag, data = excluded.data`
	qDelete = `DELETE FROM attachments
WHERE kiosk_id = ? AND kind = ? AND item_id = ? AND exclusive = ?`
	qKeys       = `SELECT kind, item_id, exclusive FROM attachments WHERE kiosk_id = ?`
	qNamespaces = `SELECT DISTINCT kiosk_id FROM attachments ORDER BY kiosk_id`
)
