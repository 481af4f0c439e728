package storage

import "time"

// VirtualEntry is a snapshot of one node in the virtual filesystem. Content
// is populated only by operations that fetch it (ReadFile); other
// operations leave it nil.
type VirtualEntry struct {
	InodeID   string
	Session   string
	Path      string
	Name      string
	Type      string
	Version   int64
	Content   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDirectory reports whether the entry represents a directory node.
func (e VirtualEntry) IsDirectory() bool {
	return e.Type == "directory"
}

// FileVersion is one immutable content snapshot returned by GetFileHistory.
type FileVersion struct {
	Version   int64
	Content   []byte
	CreatedAt time.Time
}

// DirectoryListing is the result of ListDirectory: its two members are
// already ordered by name ascending.
type DirectoryListing struct {
	Directories []VirtualEntry
	Files       []VirtualEntry
}

// SessionSummary is the per-session aggregate reported by Dump.
type SessionSummary struct {
	Session   string
	FileCount int
	Files     []DumpEntry
}

// DumpEntry describes a single node within a Dump summary.
type DumpEntry struct {
	Path        string
	IsDirectory bool
	Version     int64
	Size        int
}
