// Package sqlite provides a SQLite-based implementation of the
// IndexStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. One database
// holds every persisted index snapshot, keyed by the canonicalized
// knowledge-base path.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.navigator/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode; snapshot replacement runs in a single
// transaction so readers never observe a half-written index.
package sqlite
