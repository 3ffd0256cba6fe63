// Package sqlite provides the SQLite-backed state store.
//
// The database lives at ~/.codebook/data/codebook.db by default and holds a
// single table of versioned blobs. Schema changes are embedded SQL files
// applied in order on open.
package sqlite
