package sqldb

import (
	"context"
	"database/sql"
)

// Node mirrors a row of the nodes table.
type Node struct {
	ID            string
	Session       string
	Path          string
	Name          string
	ParentPath    sql.NullString
	Type          string
	CreatedAt     sql.NullTime
	UpdatedAt     sql.NullTime
	LatestVersion sql.NullInt64
}

const findNodeBySessionAndPath = `
SELECT id, session, path, name, parent_path, type, created_at, updated_at, latest_version
FROM nodes WHERE session = ? AND path = ?
`

type FindNodeBySessionAndPathParams struct {
	Session string
	Path    string
}

func (q *Queries) FindNodeBySessionAndPath(ctx context.Context, arg FindNodeBySessionAndPathParams) (Node, error) {
	row := q.db.QueryRowContext(ctx, findNodeBySessionAndPath, arg.Session, arg.Path)
	var n Node
	err := row.Scan(&n.ID, &n.Session, &n.Path, &n.Name, &n.ParentPath, &n.Type, &n.CreatedAt, &n.UpdatedAt, &n.LatestVersion)
	return n, err
}

const findNodeByID = `
SELECT id, session, path, name, parent_path, type, created_at, updated_at, latest_version
FROM nodes WHERE id = ?
`

func (q *Queries) FindNodeByID(ctx context.Context, id string) (Node, error) {
	row := q.db.QueryRowContext(ctx, findNodeByID, id)
	var n Node
	err := row.Scan(&n.ID, &n.Session, &n.Path, &n.Name, &n.ParentPath, &n.Type, &n.CreatedAt, &n.UpdatedAt, &n.LatestVersion)
	return n, err
}

const listNodesBySessionAndParent = `
SELECT id, session, path, name, parent_path, type, created_at, updated_at, latest_version
FROM nodes WHERE session = ? AND parent_path = ?
ORDER BY name ASC
`

type ListNodesBySessionAndParentParams struct {
	Session    string
	ParentPath string
}

func (q *Queries) ListNodesBySessionAndParent(ctx context.Context, arg ListNodesBySessionAndParentParams) ([]Node, error) {
	rows, err := q.db.QueryContext(ctx, listNodesBySessionAndParent, arg.Session, arg.ParentPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Session, &n.Path, &n.Name, &n.ParentPath, &n.Type, &n.CreatedAt, &n.UpdatedAt, &n.LatestVersion); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

const listFileNodesBySession = `
SELECT id, session, path, name, parent_path, type, created_at, updated_at, latest_version
FROM nodes WHERE session = ? AND type = 'file'
ORDER BY path ASC
`

func (q *Queries) ListFileNodesBySession(ctx context.Context, session string) ([]Node, error) {
	rows, err := q.db.QueryContext(ctx, listFileNodesBySession, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Session, &n.Path, &n.Name, &n.ParentPath, &n.Type, &n.CreatedAt, &n.UpdatedAt, &n.LatestVersion); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

const listNodesBySession = `
SELECT id, session, path, name, parent_path, type, created_at, updated_at, latest_version
FROM nodes WHERE session = ?
ORDER BY path ASC
`

func (q *Queries) ListNodesBySession(ctx context.Context, session string) ([]Node, error) {
	rows, err := q.db.QueryContext(ctx, listNodesBySession, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Session, &n.Path, &n.Name, &n.ParentPath, &n.Type, &n.CreatedAt, &n.UpdatedAt, &n.LatestVersion); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

const listDistinctSessions = `SELECT DISTINCT session FROM nodes ORDER BY session ASC`

func (q *Queries) ListDistinctSessions(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listDistinctSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

const insertNode = `
INSERT INTO nodes (id, session, path, name, parent_path, type, latest_version)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertNodeParams struct {
	ID            string
	Session       string
	Path          string
	Name          string
	ParentPath    sql.NullString
	Type          string
	LatestVersion sql.NullInt64
}

func (q *Queries) InsertNode(ctx context.Context, arg InsertNodeParams) error {
	_, err := q.db.ExecContext(ctx, insertNode, arg.ID, arg.Session, arg.Path, arg.Name, arg.ParentPath, arg.Type, arg.LatestVersion)
	return err
}

const updateNodeLatestVersion = `
UPDATE nodes SET latest_version = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

type UpdateNodeLatestVersionParams struct {
	LatestVersion sql.NullInt64
	ID            string
}

func (q *Queries) UpdateNodeLatestVersion(ctx context.Context, arg UpdateNodeLatestVersionParams) error {
	_, err := q.db.ExecContext(ctx, updateNodeLatestVersion, arg.LatestVersion, arg.ID)
	return err
}

const relocateNode = `
UPDATE nodes SET path = ?, name = ?, parent_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

type RelocateNodeParams struct {
	Path       string
	Name       string
	ParentPath sql.NullString
	ID         string
}

func (q *Queries) RelocateNode(ctx context.Context, arg RelocateNodeParams) error {
	_, err := q.db.ExecContext(ctx, relocateNode, arg.Path, arg.Name, arg.ParentPath, arg.ID)
	return err
}

const deleteAllNodes = `DELETE FROM nodes`

func (q *Queries) DeleteAllNodes(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllNodes)
	return err
}
