package database

import "time"

// NodeRecord represents a row in the nodes table: one inode, file or
// directory, within one session.
type NodeRecord struct {
	ID            string
	Session       string
	Path          string
	Name          string
	ParentPath    string
	HasParent     bool
	Type          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LatestVersion int64
	HasVersion    bool
}

// VersionRecord represents a row in the file_versions table: one immutable
// content snapshot of a file node.
type VersionRecord struct {
	ID        string
	NodeID    string
	Version   int64
	Content   []byte
	CreatedAt time.Time
}
