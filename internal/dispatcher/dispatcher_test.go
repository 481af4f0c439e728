package dispatcher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/threadbox/threadbox/internal/database"
	"github.com/threadbox/threadbox/internal/storage"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	dbCtx, err := database.Open("")
	if err != nil {
		t.Fatalf("database.Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(dbCtx); err != nil {
			t.Fatalf("database.Close error: %v", err)
		}
	})
	return New(storage.New(dbCtx))
}

func mustStorageKind(t *testing.T, err error, kind storage.Kind) {
	t.Helper()
	serr, ok := err.(*storage.Error)
	if !ok {
		t.Fatalf("expected *storage.Error, got %T (%v)", err, err)
	}
	if serr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, serr.Kind, serr.Message)
	}
}

func TestWriteFileThenReadFileRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	written, err := d.WriteFile(ctx, WriteFileInput{Path: "/notes.txt", Content: "hello"})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if written.Version != 1 {
		t.Fatalf("expected version 1, got %d", written.Version)
	}

	read, err := d.ReadFile(ctx, ReadFileInput{Path: "/notes.txt"})
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if read.Content != "hello" || read.Base64 {
		t.Fatalf("expected plain text content, got %#v", read)
	}
}

func TestWriteFileBase64Decode(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	payload := []byte{0x00, 0x01, 0xff, 0xfe}
	encoded := base64.StdEncoding.EncodeToString(payload)

	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/binary.dat", Content: encoded, Base64: true}); err != nil {
		t.Fatalf("WriteFile with base64 content failed: %v", err)
	}

	read, err := d.ReadFile(ctx, ReadFileInput{Path: "/binary.dat"})
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !read.Base64 {
		t.Fatalf("expected base64 output for non-UTF-8 content")
	}
	decoded, err := base64.StdEncoding.DecodeString(read.Content)
	if err != nil {
		t.Fatalf("failed to decode returned content: %v", err)
	}
	if string(decoded) != string(payload) {
		t.Fatalf("expected round-tripped bytes, got %v", decoded)
	}
}

func TestWriteFileBase64DecodeFailure(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	_, err := d.WriteFile(ctx, WriteFileInput{Path: "/bad.dat", Content: "not-valid-base64!!", Base64: true})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	mustStorageKind(t, err, storage.KindDecodeError)
}

func TestReadFileMissingReturnsNotFoundError(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	_, err := d.ReadFile(ctx, ReadFileInput{Path: "/missing.txt"})
	if err == nil {
		t.Fatalf("expected NotFound error")
	}
	mustStorageKind(t, err, storage.KindNotFound)
	if err.Error() != "File not found: /missing.txt" {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

func TestListDirectoryReportsChildren(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/dir/a.txt", Content: "a"}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	listing, err := d.ListDirectory(ctx, ListDirectoryInput{Path: "/dir"})
	if err != nil {
		t.Fatalf("ListDirectory failed: %v", err)
	}
	if len(listing.Files) != 1 || listing.Files[0].Name != "a.txt" {
		t.Fatalf("unexpected listing: %#v", listing)
	}
}

func TestRenameNodeConflictProjectsStorageError(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/a.txt", Content: "A"}); err != nil {
		t.Fatalf("WriteFile a.txt failed: %v", err)
	}
	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/b.txt", Content: "B"}); err != nil {
		t.Fatalf("WriteFile b.txt failed: %v", err)
	}

	_, err := d.RenameNode(ctx, RenameNodeInput{Path: "/a.txt", NewName: "b.txt"})
	if err == nil {
		t.Fatalf("expected AlreadyExists error")
	}
	mustStorageKind(t, err, storage.KindAlreadyExists)
}

func TestMoveNodeRelocatesFile(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/drafts/idea.md", Content: "draft"}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	moved, err := d.MoveNode(ctx, MoveNodeInput{Path: "/drafts/idea.md", NewDirectory: "/archive"})
	if err != nil {
		t.Fatalf("MoveNode failed: %v", err)
	}
	if moved.Path != "/archive/idea.md" {
		t.Fatalf("expected /archive/idea.md, got %s", moved.Path)
	}
}

func TestExportSessionZipReturnsDownloadPath(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.WriteFile(ctx, WriteFileInput{Path: "/docs/readme.md", Content: "export me", SessionID: "s1"}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := d.ExportSessionZip(ctx, ExportSessionZipInput{SessionID: "s1", Destination: t.TempDir()})
	if err != nil {
		t.Fatalf("ExportSessionZip failed: %v", err)
	}
	if out.SessionID != "s1" || out.DownloadPath == "" {
		t.Fatalf("unexpected export output: %#v", out)
	}
}
