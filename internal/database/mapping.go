package database

import (
	"database/sql"
	"time"

	sqldb "github.com/threadbox/threadbox/internal/database/sqlc"
)

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value int64, valid bool) sql.NullInt64 {
	if !valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}

func optionalTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

func nodeRecordFromRow(row sqldb.Node) NodeRecord {
	return NodeRecord{
		ID:            row.ID,
		Session:       row.Session,
		Path:          row.Path,
		Name:          row.Name,
		ParentPath:    row.ParentPath.String,
		HasParent:     row.ParentPath.Valid,
		Type:          row.Type,
		CreatedAt:     optionalTime(row.CreatedAt),
		UpdatedAt:     optionalTime(row.UpdatedAt),
		LatestVersion: row.LatestVersion.Int64,
		HasVersion:    row.LatestVersion.Valid,
	}
}

func versionRecordFromRow(row sqldb.Version) VersionRecord {
	content := row.Content
	if content == nil {
		content = []byte{}
	}
	return VersionRecord{
		ID:        row.ID,
		NodeID:    row.NodeID,
		Version:   row.Version,
		Content:   content,
		CreatedAt: optionalTime(row.CreatedAt),
	}
}
