// Package dispatcher implements ThreadBox's tool contracts: the
// transport-agnostic layer between a tool-call transport (MCP over stdio,
// eventually others) and the storage engine. Every exported method takes a
// typed input, applies the encoding rules the tool contract specifies, and
// returns a typed output or a *storage.Error whose message is safe to show
// a caller verbatim.
package dispatcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/threadbox/threadbox/internal/session"
	"github.com/threadbox/threadbox/internal/storage"
)

// Dispatcher binds the tool contracts to one storage engine.
type Dispatcher struct {
	engine *storage.Engine
}

// New constructs a Dispatcher over an already-open storage engine.
func New(engine *storage.Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// WriteFileInput is the write_file tool's argument contract.
type WriteFileInput struct {
	Path      string
	Content   string
	Base64    bool
	SessionID string
}

// WriteFileOutput is the write_file tool's success payload.
type WriteFileOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

// WriteFile creates or overwrites a file. When in.Base64 is set, Content is
// decoded as base64 first; a decode failure surfaces as a DecodeError
// carrying the underlying decode message. Otherwise Content is interpreted
// as UTF-8 text.
func (d *Dispatcher) WriteFile(ctx context.Context, in WriteFileInput) (*WriteFileOutput, error) {
	var content []byte
	if in.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(in.Content)
		if err != nil {
			return nil, &storage.Error{Kind: storage.KindDecodeError, Message: fmt.Sprintf("invalid base64 content for %s: %v", in.Path, err)}
		}
		content = decoded
	} else {
		content = []byte(in.Content)
	}

	entry, err := d.engine.WriteFile(ctx, in.SessionID, in.Path, content)
	if err != nil {
		return nil, err
	}

	return &WriteFileOutput{
		InodeID:   entry.InodeID,
		Path:      entry.Path,
		Version:   entry.Version,
		SessionID: entry.Session,
	}, nil
}

// ReadFileInput is the read_file tool's argument contract.
type ReadFileInput struct {
	Path      string
	SessionID string
}

// ReadFileOutput is the read_file tool's success payload. Content is UTF-8
// text when Base64 is false, and base64-encoded bytes when it is true.
type ReadFileOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	Content   string `json:"content"`
	Base64    bool   `json:"base64"`
	SessionID string `json:"sessionId"`
}

// ReadFile fetches the latest content of a file. An absent path is
// reported as a NotFound error rather than a nil result, per the tool's
// missing-file policy.
func (d *Dispatcher) ReadFile(ctx context.Context, in ReadFileInput) (*ReadFileOutput, error) {
	entry, err := d.engine.ReadFile(ctx, in.SessionID, in.Path)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &storage.Error{Kind: storage.KindNotFound, Message: fmt.Sprintf("File not found: %s", in.Path)}
	}

	content := string(entry.Content)
	useBase64 := !utf8.Valid(entry.Content)
	if useBase64 {
		content = base64.StdEncoding.EncodeToString(entry.Content)
	}

	return &ReadFileOutput{
		InodeID:   entry.InodeID,
		Path:      entry.Path,
		Version:   entry.Version,
		Content:   content,
		Base64:    useBase64,
		SessionID: entry.Session,
	}, nil
}

// ListDirectoryInput is the list_directory tool's argument contract.
type ListDirectoryInput struct {
	Path      string
	SessionID string
}

// DirectoryEntry describes one subdirectory in a listing.
type DirectoryEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	InodeID   string `json:"inodeId"`
	UpdatedAt string `json:"updatedAt"`
}

// FileEntry describes one file in a listing.
type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	InodeID   string `json:"inodeId"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

// ListDirectoryOutput is the list_directory tool's success payload.
type ListDirectoryOutput struct {
	Path        string           `json:"path"`
	SessionID   string           `json:"sessionId"`
	Directories []DirectoryEntry `json:"directories"`
	Files       []FileEntry      `json:"files"`
}

// ListDirectory lists the immediate children of a directory, sorted by
// name within each partition.
func (d *Dispatcher) ListDirectory(ctx context.Context, in ListDirectoryInput) (*ListDirectoryOutput, error) {
	listing, err := d.engine.ListDirectory(ctx, in.SessionID, in.Path)
	if err != nil {
		return nil, err
	}

	out := &ListDirectoryOutput{
		Path:        in.Path,
		SessionID:   session.Normalize(in.SessionID),
		Directories: make([]DirectoryEntry, 0, len(listing.Directories)),
		Files:       make([]FileEntry, 0, len(listing.Files)),
	}
	for _, dir := range listing.Directories {
		out.Directories = append(out.Directories, DirectoryEntry{
			Name:      dir.Name,
			Path:      dir.Path,
			InodeID:   dir.InodeID,
			UpdatedAt: dir.UpdatedAt.Format(time.RFC3339),
		})
	}
	for _, file := range listing.Files {
		out.Files = append(out.Files, FileEntry{
			Name:      file.Name,
			Path:      file.Path,
			InodeID:   file.InodeID,
			Version:   file.Version,
			UpdatedAt: file.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// RenameNodeInput is the rename_node tool's argument contract.
type RenameNodeInput struct {
	Path      string
	NewName   string
	SessionID string
}

// RenameNodeOutput is the rename_node tool's success payload.
type RenameNodeOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

// RenameNode changes a file's basename in place.
func (d *Dispatcher) RenameNode(ctx context.Context, in RenameNodeInput) (*RenameNodeOutput, error) {
	entry, err := d.engine.RenameNode(ctx, in.SessionID, in.Path, in.NewName)
	if err != nil {
		return nil, err
	}
	return &RenameNodeOutput{InodeID: entry.InodeID, Path: entry.Path, Version: entry.Version, SessionID: entry.Session}, nil
}

// MoveNodeInput is the move_node tool's argument contract.
type MoveNodeInput struct {
	Path         string
	NewDirectory string
	SessionID    string
}

// MoveNodeOutput is the move_node tool's success payload.
type MoveNodeOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

// MoveNode relocates a file to a new parent directory.
func (d *Dispatcher) MoveNode(ctx context.Context, in MoveNodeInput) (*MoveNodeOutput, error) {
	entry, err := d.engine.MoveNode(ctx, in.SessionID, in.Path, in.NewDirectory)
	if err != nil {
		return nil, err
	}
	return &MoveNodeOutput{InodeID: entry.InodeID, Path: entry.Path, Version: entry.Version, SessionID: entry.Session}, nil
}

// ExportSessionZipInput is the export_session_zip tool's argument contract.
type ExportSessionZipInput struct {
	SessionID   string
	Destination string
}

// ExportSessionZipOutput is the export_session_zip tool's success payload.
type ExportSessionZipOutput struct {
	SessionID    string `json:"sessionId"`
	DownloadPath string `json:"downloadPath"`
}

// ExportSessionZip archives every file in a session to a ZIP file and
// reports where it was written.
func (d *Dispatcher) ExportSessionZip(ctx context.Context, in ExportSessionZipInput) (*ExportSessionZipOutput, error) {
	path, err := d.engine.ExportSessionZip(ctx, in.SessionID, in.Destination)
	if err != nil {
		return nil, err
	}
	return &ExportSessionZipOutput{SessionID: session.Normalize(in.SessionID), DownloadPath: path}, nil
}
