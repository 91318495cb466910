package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/navigator-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store persists index snapshots in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.navigator/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".navigator", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveIndex stores the snapshot under the given key. The previous
// snapshot for the key is replaced in the same transaction, so a crash
// leaves either the old snapshot or the new one.
func (s *Store) SaveIndex(ctx context.Context, key string, snap *driven.IndexSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if key == "" {
		return fmt.Errorf("%w: empty index key", domain.ErrInvalidInput)
	}
	if snap.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}
	for _, chunk := range snap.Chunks {
		if len(chunk.Embedding) != snap.Dimensions {
			return fmt.Errorf("%w: chunk %s has dimension %d, expected %d",
				domain.ErrInvalidInput, chunk.ID, len(chunk.Embedding), snap.Dimensions)
		}
	}

	documentsJSON, err := json.Marshal(snap.Documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE index_key = ?", key); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM indexes WHERE key = ?", key); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexes (key, model, dimensions, documents, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, key, snap.Model, snap.Dimensions, string(documentsJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (index_key, ord, id, document_id, source, content, position, chunk_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for ord, chunk := range snap.Chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, key, ord, chunk.ID, chunk.DocumentID,
			chunk.Source, chunk.Content, chunk.Position, chunk.Offset, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadIndex retrieves the snapshot for the key. Chunks come back in
// their original insertion order.
func (s *Store) LoadIndex(ctx context.Context, key string) (*driven.IndexSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT model, dimensions, documents FROM indexes WHERE key = ?", key)

	var (
		model         string
		dimensions    int
		documentsJSON string
	)
	if err := row.Scan(&model, &dimensions, &documentsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Chunk rows without a meta row mean a half-deleted
			// snapshot, not a clean miss.
			var orphans int
			countErr := s.db.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM chunks WHERE index_key = ?", key).Scan(&orphans)
			if countErr == nil && orphans > 0 {
				return nil, fmt.Errorf("%w: %d chunks without index metadata for key %q",
					domain.ErrIndexCorrupt, orphans, key)
			}
			return nil, fmt.Errorf("%w: no index for key %q", domain.ErrIndexNotFound, key)
		}
		return nil, fmt.Errorf("loading index: %w", err)
	}

	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: stored dimensions %d", domain.ErrIndexCorrupt, dimensions)
	}

	var documents []string
	if err := json.Unmarshal([]byte(documentsJSON), &documents); err != nil {
		return nil, fmt.Errorf("%w: undecodable document list: %v", domain.ErrIndexCorrupt, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, source, content, position, chunk_offset, embedding
		FROM chunks WHERE index_key = ? ORDER BY ord
	`, key)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var (
			chunk         domain.Chunk
			embeddingBlob []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Source,
			&chunk.Content, &chunk.Position, &chunk.Offset, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		if len(embeddingBlob) != dimensions*4 {
			return nil, fmt.Errorf("%w: chunk %s embedding is %d bytes, expected %d",
				domain.ErrIndexCorrupt, chunk.ID, len(embeddingBlob), dimensions*4)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if len(chunks) == 0 && len(documents) > 0 {
		return nil, fmt.Errorf("%w: index for key %q lists %d documents but has no chunks",
			domain.ErrIndexCorrupt, key, len(documents))
	}

	return &driven.IndexSnapshot{
		Model:      model,
		Dimensions: dimensions,
		Documents:  documents,
		Chunks:     chunks,
	}, nil
}

// DeleteIndex removes the snapshot for the key, if present.
func (s *Store) DeleteIndex(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE index_key = ?", key); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM indexes WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}

	return tx.Commit()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
