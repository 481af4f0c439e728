package database

import (
	"context"
	"database/sql"
	"fmt"

	sqldb "github.com/threadbox/threadbox/internal/database/sqlc"
)

// NodeRepository provides CRUD access to the nodes table.
type NodeRepository struct {
	ctx *Context
}

// NewNodeRepository constructs a NodeRepository bound to a database Context.
func NewNodeRepository(dbCtx *Context) *NodeRepository {
	return &NodeRepository{ctx: dbCtx}
}

// FindByPath looks up the node at (session, path). It returns (nil, nil)
// when no such node exists.
func (r *NodeRepository) FindByPath(ctx context.Context, session, path string) (*NodeRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	row, err := queries.FindNodeBySessionAndPath(ctx, sqldb.FindNodeBySessionAndPathParams{Session: session, Path: path})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := nodeRecordFromRow(row)
	return &record, nil
}

// FindByID looks up a node by its opaque identifier.
func (r *NodeRepository) FindByID(ctx context.Context, id string) (*NodeRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	row, err := queries.FindNodeByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := nodeRecordFromRow(row)
	return &record, nil
}

// ListChildren returns every node whose parent_path equals path within the
// session, ordered by name ascending.
func (r *NodeRepository) ListChildren(ctx context.Context, session, path string) ([]NodeRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListNodesBySessionAndParent(ctx, sqldb.ListNodesBySessionAndParentParams{Session: session, ParentPath: path})
	if err != nil {
		return nil, err
	}

	result := make([]NodeRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, nodeRecordFromRow(row))
	}
	return result, nil
}

// ListFiles returns every file node in the session, ordered by path
// ascending.
func (r *NodeRepository) ListFiles(ctx context.Context, session string) ([]NodeRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListFileNodesBySession(ctx, session)
	if err != nil {
		return nil, err
	}

	result := make([]NodeRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, nodeRecordFromRow(row))
	}
	return result, nil
}

// ListAll returns every node in the session, files and directories alike,
// ordered by path ascending.
func (r *NodeRepository) ListAll(ctx context.Context, session string) ([]NodeRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListNodesBySession(ctx, session)
	if err != nil {
		return nil, err
	}

	result := make([]NodeRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, nodeRecordFromRow(row))
	}
	return result, nil
}

// ListSessions returns every distinct session that has at least one node.
func (r *NodeRepository) ListSessions(ctx context.Context) ([]string, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}
	return queries.ListDistinctSessions(ctx)
}

// InsertDirectory creates a directory node. hasParent is false only for the
// session root.
func (r *NodeRepository) InsertDirectory(ctx context.Context, id, session, path, name, parentPath string, hasParent bool) error {
	queries, err := r.queries()
	if err != nil {
		return err
	}

	var parent sql.NullString
	if hasParent {
		parent = nullString(parentPath)
	}

	return queries.InsertNode(ctx, sqldb.InsertNodeParams{
		ID:         id,
		Session:    session,
		Path:       path,
		Name:       name,
		ParentPath: parent,
		Type:       "directory",
	})
}

// InsertFile creates a file node with the given initial latest_version.
func (r *NodeRepository) InsertFile(ctx context.Context, id, session, path, name, parentPath string, latestVersion int64) error {
	queries, err := r.queries()
	if err != nil {
		return err
	}

	return queries.InsertNode(ctx, sqldb.InsertNodeParams{
		ID:            id,
		Session:       session,
		Path:          path,
		Name:          name,
		ParentPath:    nullString(parentPath),
		Type:          "file",
		LatestVersion: nullInt64(latestVersion, true),
	})
}

// UpdateLatestVersion bumps a file node's latest_version and updated_at.
func (r *NodeRepository) UpdateLatestVersion(ctx context.Context, id string, version int64) error {
	queries, err := r.queries()
	if err != nil {
		return err
	}
	return queries.UpdateNodeLatestVersion(ctx, sqldb.UpdateNodeLatestVersionParams{
		LatestVersion: nullInt64(version, true),
		ID:            id,
	})
}

// Relocate updates a node's path, name, and parent_path in place, preserving
// its identity and version history.
func (r *NodeRepository) Relocate(ctx context.Context, id, path, name, parentPath string) error {
	queries, err := r.queries()
	if err != nil {
		return err
	}
	return queries.RelocateNode(ctx, sqldb.RelocateNodeParams{
		Path:       path,
		Name:       name,
		ParentPath: nullString(parentPath),
		ID:         id,
	})
}

func (r *NodeRepository) queries() (*sqldb.Queries, error) {
	if r.ctx == nil {
		return nil, fmt.Errorf("node repository: missing database context")
	}
	if r.ctx.Queries != nil {
		return r.ctx.Queries, nil
	}
	if r.ctx.DB == nil {
		return nil, fmt.Errorf("node repository: database handle not initialised")
	}
	return sqldb.New(r.ctx.DB), nil
}
