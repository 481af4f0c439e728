package database

import (
	"database/sql"
	"testing"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()

	ctx, err := Open("")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := Close(ctx); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	})

	return ctx
}

func TestOpenAppliesMigrations(t *testing.T) {
	ctx := setupTestDB(t)

	tables := []string{"nodes", "file_versions"}
	for _, table := range tables {
		if !tableExists(t, ctx.DB, table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	tmp := t.TempDir() + "/index.db"

	first, err := Open(tmp)
	if err != nil {
		t.Fatalf("first Open returned error: %v", err)
	}
	if err := Close(first); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	second, err := Open(tmp)
	if err != nil {
		t.Fatalf("second Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(second); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	})

	if !tableExists(t, second.DB, "nodes") {
		t.Fatalf("expected table nodes to exist after reopen")
	}
}

func TestTruncateRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	insertNodeRow(t, ctx.DB, "node-1", "", "/notes.txt", "notes.txt", "/", "file")
	insertVersionRow(t, ctx.DB, "ver-1", "node-1", 1, []byte("hello"))

	assertCount(t, ctx.DB, "nodes", 1)
	assertCount(t, ctx.DB, "file_versions", 1)

	if err := Truncate(ctx); err != nil {
		t.Fatalf("Truncate returned error: %v", err)
	}

	assertCount(t, ctx.DB, "nodes", 0)
	assertCount(t, ctx.DB, "file_versions", 0)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func insertNodeRow(t *testing.T, db *sql.DB, id, session, path, name, parentPath, kind string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO nodes(id, session, path, name, parent_path, type) VALUES(?, ?, ?, ?, ?, ?)`,
		id, session, path, name, parentPath, kind); err != nil {
		t.Fatalf("insertNodeRow failed: %v", err)
	}
}

func insertVersionRow(t *testing.T, db *sql.DB, id, nodeID string, version int, content []byte) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO file_versions(id, node_id, version, content) VALUES(?, ?, ?, ?)`,
		id, nodeID, version, content); err != nil {
		t.Fatalf("insertVersionRow failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
