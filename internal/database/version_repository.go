package database

import (
	"context"
	"database/sql"
	"fmt"

	sqldb "github.com/threadbox/threadbox/internal/database/sqlc"
)

// VersionRepository provides CRUD access to the file_versions table.
type VersionRepository struct {
	ctx *Context
}

// NewVersionRepository constructs a VersionRepository bound to a database
// Context.
func NewVersionRepository(dbCtx *Context) *VersionRepository {
	return &VersionRepository{ctx: dbCtx}
}

// FindByNodeAndVersion looks up a single content snapshot. It returns
// (nil, nil) when no such version exists.
func (r *VersionRepository) FindByNodeAndVersion(ctx context.Context, nodeID string, version int64) (*VersionRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	row, err := queries.FindVersionByNodeAndVersion(ctx, sqldb.FindVersionByNodeAndVersionParams{NodeID: nodeID, Version: version})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := versionRecordFromRow(row)
	return &record, nil
}

// ListByNodeDesc returns every version of a node, most recent first.
func (r *VersionRepository) ListByNodeDesc(ctx context.Context, nodeID string) ([]VersionRecord, error) {
	queries, err := r.queries()
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListVersionsByNodeDesc(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	result := make([]VersionRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, versionRecordFromRow(row))
	}
	return result, nil
}

// MaxVersion returns the highest version number recorded for a node, or 0
// if the node has no versions yet.
func (r *VersionRepository) MaxVersion(ctx context.Context, nodeID string) (int64, error) {
	queries, err := r.queries()
	if err != nil {
		return 0, err
	}
	return queries.MaxVersionForNode(ctx, nodeID)
}

// Insert records a new immutable content snapshot.
func (r *VersionRepository) Insert(ctx context.Context, id, nodeID string, version int64, content []byte) error {
	queries, err := r.queries()
	if err != nil {
		return err
	}
	return queries.InsertVersion(ctx, sqldb.InsertVersionParams{
		ID:      id,
		NodeID:  nodeID,
		Version: version,
		Content: content,
	})
}

func (r *VersionRepository) queries() (*sqldb.Queries, error) {
	if r.ctx == nil {
		return nil, fmt.Errorf("version repository: missing database context")
	}
	if r.ctx.Queries != nil {
		return r.ctx.Queries, nil
	}
	if r.ctx.DB == nil {
		return nil, fmt.Errorf("version repository: database handle not initialised")
	}
	return sqldb.New(r.ctx.DB), nil
}
