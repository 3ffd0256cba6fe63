package driven

import "context"

// StateStore persists the encoded application state as a single blob.
//
// The blob is opaque to the store. Version numbers support optimistic
// concurrency: Save with a version that no longer matches the stored one
// returns domain.ErrConflict. Stores without concurrency control accept any
// version.
type StateStore interface {
	// Load returns the blob stored under key and its version.
	// A missing key returns a nil blob, version 0 and no error.
	Load(ctx context.Context, key string) ([]byte, int64, error)

	// Save writes the blob under key when the stored version equals version,
	// and returns the new version.
	Save(ctx context.Context, key string, blob []byte, version int64) (int64, error)

	// Close releases resources.
	Close() error
}
