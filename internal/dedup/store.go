// Package dedup implements the Dedup & Persistence Store (spec.md §4.7):
// a relational table of Document Records keyed by a monotonic id, with a
// unique index on the document's SHA-256 hash enforcing the pipeline's
// deduplication invariant (spec.md §8).
//
// Grounded on _examples/msto63-mDW/internal/leibniz/store/agent_store.go's
// SQLiteAgentStore: database/sql + mattn/go-sqlite3, WAL-mode open string,
// one struct per table, context-scoped Exec/Query calls, a companion
// in-memory store for tests. jmoiron/sqlx replaces agent_store.go's
// manual column-by-column Scan calls with struct-tag scanning, since
// Document carries a StructuredData map that benefits from sqlx's named
// binding over bulk updates (spec.md §4.7 "bulk update with :id binding").
package dedup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DusanPaal/claim-management/internal/domain"
	"github.com/DusanPaal/claim-management/internal/pkgerrors"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRecordNotFound is returned by GetRecord/GetValue when no row matches.
var ErrRecordNotFound = pkgerrors.New(pkgerrors.KindDataShape, "dedup", "document record not found")

// ErrNotConnected is returned by any operation attempted after Close.
var ErrNotConnected = pkgerrors.New(pkgerrors.KindFatal, "dedup", "store is not connected")

// DB is the Document Record store. Constructed once per stage process
// (SPEC_FULL.md §7 "explicit session objects, never package-level
// globals") and passed down explicitly.
type DB struct {
	conn *sqlx.DB
}

// row is the sqlx-scannable shape of the documents table; StructuredData
// and LogText round-trip through JSON columns since SQLite has no native
// map type.
type row struct {
	ID              int64          `db:"id"`
	Hash            string         `db:"hash"`
	Subfolder       string         `db:"subfolder"`
	MessageCategory string         `db:"message_category"`
	ControlCategory string         `db:"control_category"`
	Status          string         `db:"status"`
	ExternalMsgID   string         `db:"external_msg_id"`
	FileLocation    string         `db:"file_location"`
	RawText         string         `db:"raw_text"`
	StructuredData  sql.NullString `db:"structured_data"`
	LogText         string         `db:"log_text"`
	CaseID          int64          `db:"case_id"`
	CreatedAt       time.Time      `db:"created_at"`
	LastUpdate      time.Time      `db:"last_update"`
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hash TEXT NOT NULL,
	subfolder TEXT NOT NULL DEFAULT '',
	message_category TEXT NOT NULL DEFAULT '',
	control_category TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	external_msg_id TEXT NOT NULL DEFAULT '',
	file_location TEXT NOT NULL DEFAULT '',
	raw_text TEXT NOT NULL DEFAULT '',
	structured_data TEXT,
	log_text TEXT NOT NULL DEFAULT '',
	case_id INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_update DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash);
`

// Open creates (or reuses) a SQLite-backed store at path, applying the
// same WAL-mode pragmas as the teacher's agent store for safe concurrent
// single-writer access. DB exposes only the Document Record operations,
// so a production deployment can swap the sqlite3 driver for
// github.com/lib/pq against a shared Postgres instance without touching
// callers.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dedup: create directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("dedup: open %s: %w", path, err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dedup: init schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// CreateRecord inserts a new Document Record and returns its assigned id.
// A conflicting hash (spec.md §4.7 "unique index on document SHA-256")
// surfaces as a KindBusinessWarning — callers route this into the
// Pipeline Controller's idempotence handling rather than treating it as a
// fatal error (spec.md §4.8).
func (d *DB) CreateRecord(ctx context.Context, doc *domain.Document) (int64, error) {
	if d.conn == nil {
		return 0, ErrNotConnected
	}

	structured, err := marshalStructured(doc.StructuredData)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO documents (hash, subfolder, message_category, control_category, status,
			external_msg_id, file_location, raw_text, structured_data, log_text, case_id, created_at, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.Hash, doc.Subfolder, doc.MessageCategory, string(doc.ControlCategory), string(doc.Status),
		doc.ExternalMsgID, doc.FileLocation, doc.RawText, structured, doc.LogText, doc.CaseID, now, now)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, pkgerrors.Wrap(pkgerrors.KindBusinessWarning, "dedup.CreateRecord", err)
		}
		return 0, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.CreateRecord", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.CreateRecord", err)
	}
	return id, nil
}

// GetRecord fetches a Document Record by id.
func (d *DB) GetRecord(ctx context.Context, id int64) (*domain.Document, error) {
	if d.conn == nil {
		return nil, ErrNotConnected
	}

	var r row
	err := d.conn.GetContext(ctx, &r, `SELECT * FROM documents WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.GetRecord", err)
	}
	return r.toDomain()
}

// GetRecords returns every Document Record whose column equals value
// (spec.md §4.7 "get_records(column, value(s))"). column is restricted to
// the fixed set of queryable columns to avoid building arbitrary SQL from
// caller-controlled strings.
func (d *DB) GetRecords(ctx context.Context, column string, values ...any) ([]*domain.Document, error) {
	if d.conn == nil {
		return nil, ErrNotConnected
	}
	if !queryableColumns[column] {
		return nil, pkgerrors.New(pkgerrors.KindFatal, "dedup.GetRecords", "unqueryable column: "+column)
	}
	if len(values) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM documents WHERE `+column+` IN (?)`, values)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindFatal, "dedup.GetRecords", err)
	}
	query = d.conn.Rebind(query)

	var rows []row
	if err := d.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.GetRecords", err)
	}

	docs := make([]*domain.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

var queryableColumns = map[string]bool{
	"id": true, "hash": true, "subfolder": true, "status": true,
	"external_msg_id": true, "case_id": true, "control_category": true,
}

// GetValue reads a single column's value for one record id (spec.md §4.7
// "get_value(table, id, column)"). table is accepted for parity with the
// spec's signature but this store has exactly one table.
func (d *DB) GetValue(ctx context.Context, table string, id int64, column string) (string, error) {
	if d.conn == nil {
		return "", ErrNotConnected
	}
	if !queryableColumns[column] {
		return "", pkgerrors.New(pkgerrors.KindFatal, "dedup.GetValue", "unqueryable column: "+column)
	}

	var val string
	err := d.conn.GetContext(ctx, &val, `SELECT `+column+` FROM documents WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrRecordNotFound
		}
		return "", pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.GetValue", err)
	}
	return val, nil
}

// UpdateRecord applies fields to record id, stamping last_update (spec.md
// §4.7 invariant: "Bulk updates automatically stamp last_update").
func (d *DB) UpdateRecord(ctx context.Context, id int64, fields map[string]any) error {
	if d.conn == nil {
		return ErrNotConnected
	}
	if len(fields) == 0 {
		return nil
	}

	set := ""
	args := make([]any, 0, len(fields)+1)
	for col, val := range fields {
		if !queryableColumns[col] && col != "file_location" && col != "raw_text" && col != "log_text" && col != "message_category" {
			return pkgerrors.New(pkgerrors.KindFatal, "dedup.UpdateRecord", "unwritable column: "+col)
		}
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, val)
	}
	set += ", last_update = ?"
	args = append(args, time.Now(), id)

	_, err := d.conn.ExecContext(ctx, `UPDATE documents SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.UpdateRecord", err)
	}
	return nil
}

// BulkUpdate is one row's id-keyed field set for BulkUpdateRecords.
type BulkUpdate struct {
	ID     int64
	Fields map[string]any
}

// BulkUpdateRecords applies each update transactionally: all commit on
// success, all roll back on the first error (spec.md §4.7 invariant:
// "transactions commit on success, roll back on exception").
func (d *DB) BulkUpdateRecords(ctx context.Context, updates []BulkUpdate) error {
	if d.conn == nil {
		return ErrNotConnected
	}

	tx, err := d.conn.BeginTxx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.BulkUpdateRecords", err)
	}

	for _, u := range updates {
		set := ""
		args := make([]any, 0, len(u.Fields)+2)
		for col, val := range u.Fields {
			if set != "" {
				set += ", "
			}
			set += col + " = ?"
			args = append(args, val)
		}
		set += ", last_update = ?"
		args = append(args, time.Now(), u.ID)

		if _, err := tx.ExecContext(ctx, `UPDATE documents SET `+set+` WHERE id = ?`, args...); err != nil {
			tx.Rollback()
			return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.BulkUpdateRecords", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.BulkUpdateRecords", err)
	}
	return nil
}

// DeleteBy removes the record with the given document hash.
func (d *DB) DeleteBy(ctx context.Context, docHash string) error {
	if d.conn == nil {
		return ErrNotConnected
	}
	_, err := d.conn.ExecContext(ctx, `DELETE FROM documents WHERE hash = ?`, docHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.KindTransientExternal, "dedup.DeleteBy", err)
	}
	return nil
}

func marshalStructured(data map[string]any) (sql.NullString, error) {
	if len(data) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return sql.NullString{}, pkgerrors.Wrap(pkgerrors.KindDataShape, "dedup.marshalStructured", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r row) toDomain() (*domain.Document, error) {
	doc := &domain.Document{
		ID:              r.ID,
		Hash:            r.Hash,
		Subfolder:       r.Subfolder,
		MessageCategory: r.MessageCategory,
		ControlCategory: domain.ControlCategory(r.ControlCategory),
		Status:          domain.Status(r.Status),
		ExternalMsgID:   r.ExternalMsgID,
		FileLocation:    r.FileLocation,
		RawText:         r.RawText,
		LogText:         r.LogText,
		CaseID:          r.CaseID,
		CreatedAt:       r.CreatedAt,
		LastUpdate:      r.LastUpdate,
	}
	if r.StructuredData.Valid && r.StructuredData.String != "" {
		if err := json.Unmarshal([]byte(r.StructuredData.String), &doc.StructuredData); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.KindDataShape, "dedup.row.toDomain", err)
		}
	}
	return doc, nil
}

// isUniqueConstraintErr reports whether err is a SQLite unique-index
// violation, matched by substring since mattn/go-sqlite3 does not export
// a typed sentinel for every SQLite error code in this build tag
// configuration.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	return containsFold(err.Error(), "unique constraint")
}

func containsFold(s, substr string) bool {
	return len(s) >= len(substr) && indexFold(s, substr) >= 0
}

func indexFold(s, substr string) int {
	n, m := len(s), len(substr)
	for i := 0; i+m <= n; i++ {
		match := true
		for j := 0; j < m; j++ {
			a, b := s[i+j], substr[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
