// Package log provides centralised operation logging for tractome.
// Logs are stored in ~/.tractome/log/tractome-log.db and track all CLI
// commands and MCP tool invocations across working directories.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("tractogram:load", "read").
//		Path(p).
//		Format(".trk").
//		Count(len(t.Streamlines)).
//		Write(err)
//
//	log.Event("tabular:read", "read").
//		Path(dir).
//		Detail("files", len(files)).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "mcp:{tool}" for MCP tools. Examples: "tractogram:info",
// "tabular:read", "mcp:tract_info".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g., "tractogram:load", "mcp:tract_info"
	Action string // verb: read, write, convert, etc.
	Path   string // input: path as the caller supplied it
	Format string // input: file extension being handled

	// Output fields - populated after operation succeeds
	ResolvedPath string // output: expanded/validated path (if different from input)
	Count        int    // output: items handled (streamlines, rows, vertices)

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - CLI commands: "{extension}:{command}" (e.g., "tractogram:info")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:tract_csv")
//
// The action describes what operation was performed:
//   - "read", "write", "convert", "diff", etc.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Path sets the input path this operation targets.
func (b *Builder) Path(path string) *Builder {
	b.entry.Path = path
	return b
}

// Format sets the file format being handled (extension, e.g. ".trk").
func (b *Builder) Format(format string) *Builder {
	b.entry.Format = format
	return b
}

// Resolved sets the expanded/validated path (output).
// Use when the actual path differs from input, such as after user-home
// expansion.
func (b *Builder) Resolved(path string) *Builder {
	b.entry.ResolvedPath = path
	return b
}

// Count sets the number of items the operation handled (output).
// For tractograms this is streamlines, for CSV ingestion rows, for
// meshes vertices.
func (b *Builder) Count(n int) *Builder {
	b.entry.Count = n
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// delimiter, reference image, file counts, etc. Can be called multiple
// times to add multiple details.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
//
// This is the standard way to complete a log entry after an operation:
//
//	t, err := tractogram.Load(path, ref)
//	log.Event("tractogram:load", "read").Path(path).Write(err)
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute path of the working directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
