package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/threadbox/threadbox/internal/config"
	"github.com/threadbox/threadbox/internal/database"
	"github.com/threadbox/threadbox/internal/mcpserver"
	"github.com/threadbox/threadbox/internal/storage"
)

var (
	mcpServerFlag   bool
	dumpFlag        bool
	zipFlag         bool
	formatFlag      string
	sessionFlag     string
	destinationFlag string
	dataPathFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "threadbox",
	Short: "ThreadBox - a versioned virtual filesystem for AI agent artifacts",
	Long: "ThreadBox exposes a session-scoped, version-tracked virtual filesystem " +
		"over a tool-call protocol so an agent can write, read, and reorganize " +
		"artifacts without touching the host filesystem.",
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.Flags().BoolVar(&mcpServerFlag, "mcp-server", false, "Serve tool calls over stdio using the Model Context Protocol")
	rootCmd.Flags().BoolVar(&dumpFlag, "dump", false, "Print a summary of every session's contents")
	rootCmd.Flags().BoolVar(&zipFlag, "zip", false, "Export --session as a ZIP archive")
	rootCmd.Flags().StringVar(&formatFlag, "format", "json", "Output format for --dump: json or table")
	rootCmd.Flags().StringVar(&sessionFlag, "session", "", "Session to export with --zip")
	rootCmd.Flags().StringVar(&destinationFlag, "destination", "", "Destination directory for --zip output; defaults to the host temp directory")
	rootCmd.Flags().StringVar(&dataPathFlag, "data-path", "", "Override the data directory (default $HOME/.threadbox/data)")
}

func runRoot(cmd *cobra.Command, _ []string) error {
	modes := 0
	for _, on := range []bool{mcpServerFlag, dumpFlag, zipFlag} {
		if on {
			modes++
		}
	}
	if modes == 0 {
		return cmd.Help()
	}
	if modes > 1 {
		return fmt.Errorf("--mcp-server, --dump, and --zip are mutually exclusive")
	}
	if zipFlag && sessionFlag == "" {
		return fmt.Errorf("--zip requires --session")
	}

	dataDir := config.DataDir(dataPathFlag)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := config.DatabasePath(dataDir)

	switch {
	case mcpServerFlag:
		return runMCPServer(dbPath)
	case dumpFlag:
		return runDump(cmd, dbPath)
	case zipFlag:
		return runZipExport(cmd, dbPath)
	}
	return nil
}

// runMCPServer serves tool calls over stdio. Nothing in this path writes to
// stdout: the stdio transport owns it, and diagnostics belong on stderr.
func runMCPServer(dbPath string) error {
	dbCtx, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	server := mcpserver.NewServer(dbCtx)
	return server.Run(context.Background())
}

func runDump(cmd *cobra.Command, dbPath string) error {
	dbCtx, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		_ = database.Close(dbCtx)
	}()

	engine := storage.New(dbCtx)
	summaries, err := engine.Dump(context.Background())
	if err != nil {
		return err
	}

	switch formatFlag {
	case "json":
		return dumpJSON(cmd, summaries)
	case "table":
		dumpTable(cmd, summaries)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", formatFlag)
	}
}

func runZipExport(cmd *cobra.Command, dbPath string) error {
	dbCtx, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		_ = database.Close(dbCtx)
	}()

	engine := storage.New(dbCtx)
	path, err := engine.ExportSessionZip(context.Background(), sessionFlag, destinationFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

type dumpSessionValue struct {
	FileCount int             `json:"fileCount"`
	Files     []dumpFileOuput `json:"files"`
}

type dumpFileOuput struct {
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	Version     int64  `json:"version,omitempty"`
	Size        int    `json:"size,omitempty"`
}

func sortedSessionKeys(summaries map[string]storage.SessionSummary) []string {
	keys := make([]string, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dumpJSON encodes summaries keyed by session id, per spec.md §6: the
// top-level JSON value is an object whose keys are session identifiers,
// not an array of session records.
func dumpJSON(cmd *cobra.Command, summaries map[string]storage.SessionSummary) error {
	output := make(map[string]dumpSessionValue, len(summaries))
	for sess, summary := range summaries {
		value := dumpSessionValue{FileCount: summary.FileCount}
		for _, entry := range summary.Files {
			value.Files = append(value.Files, dumpFileOuput{
				Path:        entry.Path,
				IsDirectory: entry.IsDirectory,
				Version:     entry.Version,
				Size:        entry.Size,
			})
		}
		output[sess] = value
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

func dumpTable(cmd *cobra.Command, summaries map[string]storage.SessionSummary) {
	termWidth := getTerminalWidth()
	pathWidth := termWidth - 40
	if pathWidth < 20 {
		pathWidth = 20
	}

	for _, sess := range sortedSessionKeys(summaries) {
		summary := summaries[sess]
		label := sess
		if label == "" {
			label = "(default)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session: %s (%d files)\n", label, summary.FileCount)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Type", "Path", "Version", "Size"})

		for _, entry := range summary.Files {
			kind := "file"
			version := fmt.Sprintf("%d", entry.Version)
			size := fmt.Sprintf("%d", entry.Size)
			if entry.IsDirectory {
				kind = "dir"
				version = ""
				size = ""
			}
			t.AppendRow(table.Row{kind, runewidth.Truncate(entry.Path, pathWidth, "..."), version, size})
		}
		t.Render()
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
