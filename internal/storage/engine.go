package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/threadbox/threadbox/internal/archive"
	"github.com/threadbox/threadbox/internal/database"
	sqldb "github.com/threadbox/threadbox/internal/database/sqlc"
	"github.com/threadbox/threadbox/internal/idgen"
	"github.com/threadbox/threadbox/internal/pathalg"
	"github.com/threadbox/threadbox/internal/session"
)

// Engine is the storage engine: the versioned virtual filesystem backing
// every tool call. It owns the database connection passed to New and must
// not be shared across processes.
type Engine struct {
	dbCtx *database.Context
}

// New wraps an open database connection in a storage engine.
func New(dbCtx *database.Context) *Engine {
	return &Engine{dbCtx: dbCtx}
}

// Close releases the underlying database handle. Operations issued after
// Close fail.
func (e *Engine) Close() error {
	return database.Close(e.dbCtx)
}

// txScope bundles the repositories bound to a single transaction so engine
// methods can pass one value through their internal helpers.
type txScope struct {
	nodes    *database.NodeRepository
	versions *database.VersionRepository
}

// withTx runs fn inside one write transaction, mirroring the teacher's
// service-layer transaction helper: on any error the transaction is rolled
// back and the error propagates unchanged.
func (e *Engine) withTx(ctx context.Context, fn func(context.Context, *txScope) error) error {
	if e.dbCtx == nil || e.dbCtx.DB == nil {
		return backendError(fmt.Errorf("storage: missing database context"))
	}

	tx, err := e.dbCtx.DB.BeginTx(ctx, nil)
	if err != nil {
		return backendError(err)
	}

	scoped := &txScope{
		nodes:    database.NewNodeRepository(&database.Context{DB: e.dbCtx.DB, Queries: sqldb.New(tx)}),
		versions: database.NewVersionRepository(&database.Context{DB: e.dbCtx.DB, Queries: sqldb.New(tx)}),
	}

	if err := fn(ctx, scoped); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return backendError(err)
	}
	return nil
}

// ensureRoot makes sure the session root directory node exists.
func ensureRoot(ctx context.Context, s *txScope, sess string) error {
	existing, err := s.nodes.FindByPath(ctx, sess, pathalg.Root)
	if err != nil {
		return backendError(err)
	}
	if existing != nil {
		return nil
	}
	if err := s.nodes.InsertDirectory(ctx, idgen.New(), sess, pathalg.Root, pathalg.Root, "", false); err != nil {
		return backendError(err)
	}
	return nil
}

// ensureDirectoryPath makes sure dirPath and every ancestor of it exist as
// directory nodes, creating whichever are missing. The root must already
// exist; callers call ensureRoot first.
func ensureDirectoryPath(ctx context.Context, s *txScope, sess, dirPath string) error {
	if dirPath == pathalg.Root {
		return nil
	}

	chain := append(pathalg.Ancestors(dirPath), dirPath)
	for _, dir := range chain {
		existing, err := s.nodes.FindByPath(ctx, sess, dir)
		if err != nil {
			return backendError(err)
		}
		if existing != nil {
			if existing.Type != "directory" {
				return newError(KindNotADirectory, fmt.Sprintf("%s is not a directory", dir))
			}
			continue
		}

		parent, _ := pathalg.Parent(dir)
		if err := s.nodes.InsertDirectory(ctx, idgen.New(), sess, dir, pathalg.Basename(dir), parent, true); err != nil {
			return backendError(err)
		}
	}
	return nil
}

// WriteFile creates or overwrites the file at path, returning the entry as
// it stands after the write. Each call to an existing file appends a new
// version; version numbers never skip.
func (e *Engine) WriteFile(ctx context.Context, rawSession, rawPath string, content []byte) (*VirtualEntry, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}

	var result *VirtualEntry
	err = e.withTx(ctx, func(ctx context.Context, s *txScope) error {
		if err := ensureRoot(ctx, s, sess); err != nil {
			return err
		}
		if parent, ok := pathalg.Parent(path); ok {
			if err := ensureDirectoryPath(ctx, s, sess, parent); err != nil {
				return err
			}
		}

		existing, err := s.nodes.FindByPath(ctx, sess, path)
		if err != nil {
			return backendError(err)
		}

		var nodeID string
		var version int64
		if existing == nil {
			nodeID = idgen.New()
			version = 1
			parent, _ := pathalg.Parent(path)
			if err := s.nodes.InsertFile(ctx, nodeID, sess, path, pathalg.Basename(path), parent, version); err != nil {
				return backendError(err)
			}
		} else if existing.Type == "directory" {
			return newError(KindIsDirectory, fmt.Sprintf("%s is a directory", path))
		} else {
			nodeID = existing.ID
			version = existing.LatestVersion + 1
			if err := s.nodes.UpdateLatestVersion(ctx, nodeID, version); err != nil {
				return backendError(err)
			}
		}

		if err := s.versions.Insert(ctx, idgen.New(), nodeID, version, content); err != nil {
			return backendError(err)
		}

		node, err := s.nodes.FindByID(ctx, nodeID)
		if err != nil {
			return backendError(err)
		}
		result = entryFromNode(*node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadFile returns the entry at path together with its latest content.
// It returns (nil, nil) when the path is absent or names a directory; the
// dispatcher, not the engine, decides how a caller experiences that.
func (e *Engine) ReadFile(ctx context.Context, rawSession, rawPath string) (*VirtualEntry, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}

	nodes := database.NewNodeRepository(e.dbCtx)
	versions := database.NewVersionRepository(e.dbCtx)

	node, err := nodes.FindByPath(ctx, sess, path)
	if err != nil {
		return nil, backendError(err)
	}
	if node == nil || node.Type != "file" {
		return nil, nil
	}

	version, err := versions.FindByNodeAndVersion(ctx, node.ID, node.LatestVersion)
	if err != nil {
		return nil, backendError(err)
	}
	if version == nil {
		return nil, backendError(fmt.Errorf("storage: node %s missing latest version %d", node.ID, node.LatestVersion))
	}

	entry := entryFromNode(*node)
	entry.Content = version.Content
	return entry, nil
}

// ListDirectory returns the immediate children of path, partitioned by
// type and each ordered by name ascending.
func (e *Engine) ListDirectory(ctx context.Context, rawSession, rawPath string) (*DirectoryListing, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}

	var listing *DirectoryListing
	err = e.withTx(ctx, func(ctx context.Context, s *txScope) error {
		node, err := s.nodes.FindByPath(ctx, sess, path)
		if err != nil {
			return backendError(err)
		}
		if node == nil {
			if path == pathalg.Root {
				if err := ensureRoot(ctx, s, sess); err != nil {
					return err
				}
				listing = &DirectoryListing{}
				return nil
			}
			return newError(KindNotADirectory, fmt.Sprintf("%s is not a directory", path))
		}
		if node.Type != "directory" {
			return newError(KindNotADirectory, fmt.Sprintf("%s is not a directory", path))
		}

		children, err := s.nodes.ListChildren(ctx, sess, path)
		if err != nil {
			return backendError(err)
		}

		result := &DirectoryListing{}
		for _, child := range children {
			entry := entryFromNode(child)
			if child.Type == "directory" {
				result.Directories = append(result.Directories, *entry)
			} else {
				result.Files = append(result.Files, *entry)
			}
		}
		listing = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// RenameNode changes a file's basename without moving it between
// directories. The root cannot be renamed.
func (e *Engine) RenameNode(ctx context.Context, rawSession, rawPath, rawNewName string) (*VirtualEntry, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}
	newName, err := pathalg.NormalizeName(rawNewName)
	if err != nil {
		return nil, fromPathError(err)
	}

	parent, ok := pathalg.Parent(path)
	if !ok {
		return nil, newError(KindInvalidOperation, "the session root cannot be renamed")
	}
	target := pathalg.Join(parent, newName)

	return e.relocate(ctx, sess, path, target)
}

// MoveNode relocates a file to a new parent directory, preserving its
// basename and identity.
func (e *Engine) MoveNode(ctx context.Context, rawSession, rawPath, rawNewDirectory string) (*VirtualEntry, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}
	newDirectory, err := pathalg.Normalize(rawNewDirectory)
	if err != nil {
		return nil, fromPathError(err)
	}

	target := pathalg.Join(newDirectory, pathalg.Basename(path))
	if target == path {
		return nil, newError(KindInvalidOperation, fmt.Sprintf("%s is already located at %s", path, newDirectory))
	}

	return e.relocate(ctx, sess, path, target)
}

// relocate is the routine RenameNode and MoveNode both delegate to: it
// moves a file node from one canonical path to another within one
// transaction, preserving its id and version history.
func (e *Engine) relocate(ctx context.Context, sess, from, to string) (*VirtualEntry, error) {
	if from == pathalg.Root {
		return nil, newError(KindInvalidOperation, "the session root cannot be relocated")
	}

	var result *VirtualEntry
	err := e.withTx(ctx, func(ctx context.Context, s *txScope) error {
		source, err := s.nodes.FindByPath(ctx, sess, from)
		if err != nil {
			return backendError(err)
		}
		if source == nil {
			return newError(KindNotFound, fmt.Sprintf("%s not found", from))
		}
		if source.Type != "file" {
			return newError(KindUnsupportedKind, fmt.Sprintf("%s is a directory; directory moves are not supported", from))
		}

		newParent, ok := pathalg.Parent(to)
		if !ok {
			return newError(KindInvalidPath, fmt.Sprintf("%s has no parent directory", to))
		}

		conflict, err := s.nodes.FindByPath(ctx, sess, to)
		if err != nil {
			return backendError(err)
		}
		if conflict != nil {
			return newError(KindAlreadyExists, fmt.Sprintf("%s already exists", to))
		}

		if err := ensureDirectoryPath(ctx, s, sess, newParent); err != nil {
			return err
		}

		if err := s.nodes.Relocate(ctx, source.ID, to, pathalg.Basename(to), newParent); err != nil {
			return backendError(err)
		}

		refreshed, err := s.nodes.FindByID(ctx, source.ID)
		if err != nil {
			return backendError(err)
		}
		result = entryFromNode(*refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetFileHistory returns every version of the file at path, most recent
// first. An absent file yields an empty slice, not an error.
func (e *Engine) GetFileHistory(ctx context.Context, rawSession, rawPath string) ([]FileVersion, error) {
	sess := session.Normalize(rawSession)
	path, err := pathalg.Normalize(rawPath)
	if err != nil {
		return nil, fromPathError(err)
	}

	nodes := database.NewNodeRepository(e.dbCtx)
	versions := database.NewVersionRepository(e.dbCtx)

	node, err := nodes.FindByPath(ctx, sess, path)
	if err != nil {
		return nil, backendError(err)
	}
	if node == nil || node.Type != "file" {
		return []FileVersion{}, nil
	}

	rows, err := versions.ListByNodeDesc(ctx, node.ID)
	if err != nil {
		return nil, backendError(err)
	}

	result := make([]FileVersion, 0, len(rows))
	for _, row := range rows {
		result = append(result, FileVersion{Version: row.Version, Content: row.Content, CreatedAt: row.CreatedAt})
	}
	return result, nil
}

// ExportSessionZip writes every file in a session to a ZIP archive under
// destinationDir (the host temp directory when empty) and returns the
// absolute path of the file it created.
func (e *Engine) ExportSessionZip(ctx context.Context, rawSession, destinationDir string) (string, error) {
	sess := session.Normalize(rawSession)

	nodes := database.NewNodeRepository(e.dbCtx)
	versions := database.NewVersionRepository(e.dbCtx)

	files, err := nodes.ListFiles(ctx, sess)
	if err != nil {
		return "", backendError(err)
	}

	entries := make([]archive.Entry, 0, len(files))
	for _, f := range files {
		version, err := versions.FindByNodeAndVersion(ctx, f.ID, f.LatestVersion)
		if err != nil {
			return "", backendError(err)
		}
		if version == nil {
			continue
		}
		entries = append(entries, archive.Entry{
			Name:    strings.TrimPrefix(f.Path, "/"),
			Content: version.Content,
		})
	}

	data, err := archive.Encode(entries)
	if err != nil {
		return "", backendError(err)
	}

	dir := destinationDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", backendError(fmt.Errorf("create destination directory: %w", err))
	}

	filename := fmt.Sprintf("threadbox-session-%s-%s.zip", session.SafeName(sess), time.Now().UTC().Format("20060102T150405Z"))
	fullPath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullPath, data, 0o640); err != nil {
		return "", backendError(fmt.Errorf("write archive: %w", err))
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fullPath, nil
	}
	return absPath, nil
}

// Dump summarises every session currently stored, for the --dump CLI mode.
func (e *Engine) Dump(ctx context.Context) (map[string]SessionSummary, error) {
	nodes := database.NewNodeRepository(e.dbCtx)
	versions := database.NewVersionRepository(e.dbCtx)

	sessions, err := nodes.ListSessions(ctx)
	if err != nil {
		return nil, backendError(err)
	}

	result := make(map[string]SessionSummary, len(sessions))
	for _, sess := range sessions {
		all, err := nodes.ListAll(ctx, sess)
		if err != nil {
			return nil, backendError(err)
		}

		summary := SessionSummary{Session: sess}
		for _, n := range all {
			entry := DumpEntry{Path: n.Path, IsDirectory: n.Type == "directory"}
			if n.Type == "file" {
				summary.FileCount++
				entry.Version = n.LatestVersion

				latest, err := versions.FindByNodeAndVersion(ctx, n.ID, n.LatestVersion)
				if err != nil {
					return nil, backendError(err)
				}
				if latest != nil {
					entry.Size = len(latest.Content)
				}
			}
			summary.Files = append(summary.Files, entry)
		}
		result[sess] = summary
	}
	return result, nil
}

func entryFromNode(n database.NodeRecord) *VirtualEntry {
	return &VirtualEntry{
		InodeID:   n.ID,
		Session:   n.Session,
		Path:      n.Path,
		Name:      n.Name,
		Type:      n.Type,
		Version:   n.LatestVersion,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
