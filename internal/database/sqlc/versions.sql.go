package sqldb

import (
	"context"
	"database/sql"
)

// Version mirrors a row of the file_versions table.
type Version struct {
	ID        string
	NodeID    string
	Version   int64
	Content   []byte
	CreatedAt sql.NullTime
}

const findVersionByNodeAndVersion = `
SELECT id, node_id, version, content, created_at
FROM file_versions WHERE node_id = ? AND version = ?
`

type FindVersionByNodeAndVersionParams struct {
	NodeID  string
	Version int64
}

func (q *Queries) FindVersionByNodeAndVersion(ctx context.Context, arg FindVersionByNodeAndVersionParams) (Version, error) {
	row := q.db.QueryRowContext(ctx, findVersionByNodeAndVersion, arg.NodeID, arg.Version)
	var v Version
	err := row.Scan(&v.ID, &v.NodeID, &v.Version, &v.Content, &v.CreatedAt)
	return v, err
}

const listVersionsByNodeDesc = `
SELECT id, node_id, version, content, created_at
FROM file_versions WHERE node_id = ? ORDER BY version DESC
`

func (q *Queries) ListVersionsByNodeDesc(ctx context.Context, nodeID string) ([]Version, error) {
	rows, err := q.db.QueryContext(ctx, listVersionsByNodeDesc, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.NodeID, &v.Version, &v.Content, &v.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

const maxVersionForNode = `SELECT COALESCE(MAX(version), 0) FROM file_versions WHERE node_id = ?`

func (q *Queries) MaxVersionForNode(ctx context.Context, nodeID string) (int64, error) {
	var max int64
	err := q.db.QueryRowContext(ctx, maxVersionForNode, nodeID).Scan(&max)
	return max, err
}

const insertVersion = `
INSERT INTO file_versions (id, node_id, version, content) VALUES (?, ?, ?, ?)
`

type InsertVersionParams struct {
	ID      string
	NodeID  string
	Version int64
	Content []byte
}

func (q *Queries) InsertVersion(ctx context.Context, arg InsertVersionParams) error {
	_, err := q.db.ExecContext(ctx, insertVersion, arg.ID, arg.NodeID, arg.Version, arg.Content)
	return err
}

const deleteAllVersions = `DELETE FROM file_versions`

func (q *Queries) DeleteAllVersions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllVersions)
	return err
}
