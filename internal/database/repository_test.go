package database

import (
	"context"
	"testing"
)

func TestNodeRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewNodeRepository(dbCtx)

	if err := repo.InsertDirectory(ctx, "root-id", "", "/", "/", "", false); err != nil {
		t.Fatalf("InsertDirectory root failed: %v", err)
	}
	if err := repo.InsertFile(ctx, "file-id", "", "/notes.txt", "notes.txt", "/", 1); err != nil {
		t.Fatalf("InsertFile failed: %v", err)
	}

	byPath, err := repo.FindByPath(ctx, "", "/notes.txt")
	if err != nil {
		t.Fatalf("FindByPath returned error: %v", err)
	}
	if byPath == nil || byPath.Type != "file" || byPath.LatestVersion != 1 {
		t.Fatalf("unexpected node %#v", byPath)
	}

	byID, err := repo.FindByID(ctx, "file-id")
	if err != nil || byID == nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if byID.Path != "/notes.txt" {
		t.Fatalf("expected path /notes.txt, got %s", byID.Path)
	}

	children, err := repo.ListChildren(ctx, "", "/")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(children) != 1 || children[0].ID != "file-id" {
		t.Fatalf("expected 1 child, got %#v", children)
	}

	files, err := repo.ListFiles(ctx, "")
	if err != nil || len(files) != 1 {
		t.Fatalf("ListFiles failed: %v len=%d", err, len(files))
	}

	if err := repo.UpdateLatestVersion(ctx, "file-id", 2); err != nil {
		t.Fatalf("UpdateLatestVersion failed: %v", err)
	}
	updated, err := repo.FindByID(ctx, "file-id")
	if err != nil || updated == nil || updated.LatestVersion != 2 {
		t.Fatalf("expected latest version 2, got %#v err=%v", updated, err)
	}

	if err := repo.Relocate(ctx, "file-id", "/renamed.txt", "renamed.txt", "/"); err != nil {
		t.Fatalf("Relocate failed: %v", err)
	}
	relocated, err := repo.FindByPath(ctx, "", "/renamed.txt")
	if err != nil || relocated == nil {
		t.Fatalf("expected node at new path: %v", err)
	}
	if relocated.ID != "file-id" {
		t.Fatalf("expected relocated node to keep its id")
	}

	gone, err := repo.FindByPath(ctx, "", "/notes.txt")
	if err != nil {
		t.Fatalf("FindByPath after relocate returned error: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected old path to be vacated")
	}
}

func TestNodeRepositorySessionIsolation(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	repo := NewNodeRepository(dbCtx)

	if err := repo.InsertFile(ctx, "a", "session-a", "/x.txt", "x.txt", "/", 1); err != nil {
		t.Fatalf("insert into session-a failed: %v", err)
	}
	if err := repo.InsertFile(ctx, "b", "session-b", "/x.txt", "x.txt", "/", 1); err != nil {
		t.Fatalf("insert into session-b failed: %v", err)
	}

	sessions, err := repo.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 distinct sessions, got %v", sessions)
	}

	inA, err := repo.FindByPath(ctx, "session-a", "/x.txt")
	if err != nil || inA == nil || inA.ID != "a" {
		t.Fatalf("expected session-a node, got %#v err=%v", inA, err)
	}
	inB, err := repo.FindByPath(ctx, "session-b", "/x.txt")
	if err != nil || inB == nil || inB.ID != "b" {
		t.Fatalf("expected session-b node, got %#v err=%v", inB, err)
	}
}

func TestVersionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	nodes := NewNodeRepository(dbCtx)
	versions := NewVersionRepository(dbCtx)

	if err := nodes.InsertFile(ctx, "file-id", "", "/notes.txt", "notes.txt", "/", 1); err != nil {
		t.Fatalf("InsertFile failed: %v", err)
	}

	max, err := versions.MaxVersion(ctx, "file-id")
	if err != nil || max != 0 {
		t.Fatalf("expected max version 0 before any insert, got %d err=%v", max, err)
	}

	if err := versions.Insert(ctx, "ver-1", "file-id", 1, []byte("first")); err != nil {
		t.Fatalf("Insert version 1 failed: %v", err)
	}
	if err := versions.Insert(ctx, "ver-2", "file-id", 2, []byte("second")); err != nil {
		t.Fatalf("Insert version 2 failed: %v", err)
	}

	max, err = versions.MaxVersion(ctx, "file-id")
	if err != nil || max != 2 {
		t.Fatalf("expected max version 2, got %d err=%v", max, err)
	}

	latest, err := versions.FindByNodeAndVersion(ctx, "file-id", 2)
	if err != nil || latest == nil {
		t.Fatalf("FindByNodeAndVersion failed: %v", err)
	}
	if string(latest.Content) != "second" {
		t.Fatalf("expected content 'second', got %q", latest.Content)
	}

	history, err := versions.ListByNodeDesc(ctx, "file-id")
	if err != nil {
		t.Fatalf("ListByNodeDesc failed: %v", err)
	}
	if len(history) != 2 || history[0].Version != 2 || history[1].Version != 1 {
		t.Fatalf("expected descending history [2,1], got %#v", history)
	}

	missing, err := versions.FindByNodeAndVersion(ctx, "file-id", 99)
	if err != nil {
		t.Fatalf("FindByNodeAndVersion for missing version returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing version")
	}
}

func TestVersionRepositoryEmptyContent(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	nodes := NewNodeRepository(dbCtx)
	versions := NewVersionRepository(dbCtx)

	if err := nodes.InsertFile(ctx, "empty-file", "", "/empty.txt", "empty.txt", "/", 1); err != nil {
		t.Fatalf("InsertFile failed: %v", err)
	}
	if err := versions.Insert(ctx, "ver-empty", "empty-file", 1, []byte{}); err != nil {
		t.Fatalf("Insert empty content failed: %v", err)
	}

	found, err := versions.FindByNodeAndVersion(ctx, "empty-file", 1)
	if err != nil || found == nil {
		t.Fatalf("FindByNodeAndVersion failed: %v", err)
	}
	if found.Content == nil || len(found.Content) != 0 {
		t.Fatalf("expected zero-length non-nil content, got %#v", found.Content)
	}
}
