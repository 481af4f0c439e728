// Package mcpserver exposes the dispatcher's tool contracts over the Model
// Context Protocol.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/threadbox/threadbox/internal/database"
	"github.com/threadbox/threadbox/internal/dispatcher"
	"github.com/threadbox/threadbox/internal/storage"
)

// Server wraps the MCP server with ThreadBox's tool set. No stdout logging
// happens anywhere in this package: the stdio transport owns standard out.
type Server struct {
	server *mcp.Server
	engine *storage.Engine
	disp   *dispatcher.Dispatcher
}

// NewServer builds a storage engine and dispatcher over an already-open
// database context and registers every tool.
func NewServer(dbCtx *database.Context) *Server {
	engine := storage.New(dbCtx)
	disp := dispatcher.New(engine)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "threadbox",
		Version: "0.1.0",
	}, nil)

	s := &Server{server: mcpServer, engine: engine, disp: disp}
	s.registerTools()
	return s
}

// Run serves tool calls over stdio until ctx is cancelled or the transport
// closes. It owns the storage engine and closes it on return.
func (s *Server) Run(ctx context.Context) error {
	defer s.engine.Close()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "write_file",
		Description: "Create or overwrite a file in the virtual filesystem, recording a new version",
	}, s.handleWriteFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_file",
		Description: "Read the latest content of a file in the virtual filesystem",
	}, s.handleReadFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_directory",
		Description: "List the immediate children of a directory",
	}, s.handleListDirectory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rename_node",
		Description: "Rename a file within its current directory",
	}, s.handleRenameNode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "move_node",
		Description: "Move a file to a different directory",
	}, s.handleMoveNode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_session_zip",
		Description: "Export every file in a session as a ZIP archive",
	}, s.handleExportSessionZip)
}

// Input/Output types for each tool. Field tags drive the JSON schema the
// SDK derives and advertises to callers.

type WriteFileInput struct {
	Path      string `json:"path" jsonschema:"required,description=Canonical path of the file to write"`
	Content   string `json:"content" jsonschema:"required,description=File content, UTF-8 text unless base64 is set"`
	Base64    bool   `json:"base64,omitempty" jsonschema:"description=Decode content as base64 before writing"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
}

type WriteFileOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleWriteFile(ctx context.Context, req *mcp.CallToolRequest, input WriteFileInput) (*mcp.CallToolResult, WriteFileOutput, error) {
	out, err := s.disp.WriteFile(ctx, dispatcher.WriteFileInput{
		Path:      input.Path,
		Content:   input.Content,
		Base64:    input.Base64,
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, WriteFileOutput{}, err
	}
	return nil, WriteFileOutput{InodeID: out.InodeID, Path: out.Path, Version: out.Version, SessionID: out.SessionID}, nil
}

type ReadFileInput struct {
	Path      string `json:"path" jsonschema:"required,description=Canonical path of the file to read"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
}

type ReadFileOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	Content   string `json:"content"`
	Base64    bool   `json:"base64"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleReadFile(ctx context.Context, req *mcp.CallToolRequest, input ReadFileInput) (*mcp.CallToolResult, ReadFileOutput, error) {
	out, err := s.disp.ReadFile(ctx, dispatcher.ReadFileInput{Path: input.Path, SessionID: input.SessionID})
	if err != nil {
		return nil, ReadFileOutput{}, err
	}
	return nil, ReadFileOutput{
		InodeID:   out.InodeID,
		Path:      out.Path,
		Version:   out.Version,
		Content:   out.Content,
		Base64:    out.Base64,
		SessionID: out.SessionID,
	}, nil
}

type ListDirectoryInput struct {
	Path      string `json:"path" jsonschema:"required,description=Canonical path of the directory to list"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
}

type DirectoryEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	InodeID   string `json:"inodeId"`
	UpdatedAt string `json:"updatedAt"`
}

type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	InodeID   string `json:"inodeId"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

type ListDirectoryOutput struct {
	Path        string           `json:"path"`
	SessionID   string           `json:"sessionId"`
	Directories []DirectoryEntry `json:"directories"`
	Files       []FileEntry      `json:"files"`
}

func (s *Server) handleListDirectory(ctx context.Context, req *mcp.CallToolRequest, input ListDirectoryInput) (*mcp.CallToolResult, ListDirectoryOutput, error) {
	out, err := s.disp.ListDirectory(ctx, dispatcher.ListDirectoryInput{Path: input.Path, SessionID: input.SessionID})
	if err != nil {
		return nil, ListDirectoryOutput{}, err
	}

	result := ListDirectoryOutput{Path: out.Path, SessionID: out.SessionID}
	for _, d := range out.Directories {
		result.Directories = append(result.Directories, DirectoryEntry{Name: d.Name, Path: d.Path, InodeID: d.InodeID, UpdatedAt: d.UpdatedAt})
	}
	for _, f := range out.Files {
		result.Files = append(result.Files, FileEntry{Name: f.Name, Path: f.Path, InodeID: f.InodeID, Version: f.Version, UpdatedAt: f.UpdatedAt})
	}
	return nil, result, nil
}

type RenameNodeInput struct {
	Path      string `json:"path" jsonschema:"required,description=Canonical path of the file to rename"`
	NewName   string `json:"newName" jsonschema:"required,description=New basename for the file"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
}

type RenameNodeOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleRenameNode(ctx context.Context, req *mcp.CallToolRequest, input RenameNodeInput) (*mcp.CallToolResult, RenameNodeOutput, error) {
	out, err := s.disp.RenameNode(ctx, dispatcher.RenameNodeInput{Path: input.Path, NewName: input.NewName, SessionID: input.SessionID})
	if err != nil {
		return nil, RenameNodeOutput{}, err
	}
	return nil, RenameNodeOutput{InodeID: out.InodeID, Path: out.Path, Version: out.Version, SessionID: out.SessionID}, nil
}

type MoveNodeInput struct {
	Path         string `json:"path" jsonschema:"required,description=Canonical path of the file to move"`
	NewDirectory string `json:"newDirectory" jsonschema:"required,description=Destination directory"`
	SessionID    string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
}

type MoveNodeOutput struct {
	InodeID   string `json:"inodeId"`
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleMoveNode(ctx context.Context, req *mcp.CallToolRequest, input MoveNodeInput) (*mcp.CallToolResult, MoveNodeOutput, error) {
	out, err := s.disp.MoveNode(ctx, dispatcher.MoveNodeInput{Path: input.Path, NewDirectory: input.NewDirectory, SessionID: input.SessionID})
	if err != nil {
		return nil, MoveNodeOutput{}, err
	}
	return nil, MoveNodeOutput{InodeID: out.InodeID, Path: out.Path, Version: out.Version, SessionID: out.SessionID}, nil
}

type ExportSessionZipInput struct {
	SessionID   string `json:"sessionId,omitempty" jsonschema:"description=Session namespace; empty selects the default session"`
	Destination string `json:"destination,omitempty" jsonschema:"description=Directory to write the archive into; defaults to the host temp directory"`
}

type ExportSessionZipOutput struct {
	SessionID    string `json:"sessionId"`
	DownloadPath string `json:"downloadPath"`
}

func (s *Server) handleExportSessionZip(ctx context.Context, req *mcp.CallToolRequest, input ExportSessionZipInput) (*mcp.CallToolResult, ExportSessionZipOutput, error) {
	out, err := s.disp.ExportSessionZip(ctx, dispatcher.ExportSessionZipInput{SessionID: input.SessionID, Destination: input.Destination})
	if err != nil {
		return nil, ExportSessionZipOutput{}, err
	}
	return nil, ExportSessionZipOutput{SessionID: out.SessionID, DownloadPath: out.DownloadPath}, nil
}
