package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	store := newStoreWithDB(db, "mock.db")
	t.Cleanup(func() {
		mock.ExpectClose()
		assert.NoError(t, store.Close())
	})

	return store, mock
}

// ==================== Store Creation ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	store, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "codebook.db"), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'state'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var version int
	err = store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.Save(ctx, "qda-storage", []byte(`{"studies":[]}`), 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	blob, version, err := reopened.Load(ctx, "qda-storage")
	require.NoError(t, err)
	assert.Equal(t, `{"studies":[]}`, string(blob))
	assert.Equal(t, int64(1), version)
}

func TestNewStore_DirectoryPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

// ==================== Load / Save ====================

func TestStore_LoadMissingKey(t *testing.T) {
	store := setupTestStore(t)

	blob, version, err := store.Load(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.Zero(t, version)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	v1, err := store.Save(ctx, "k", []byte("first"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := store.Save(ctx, "k", []byte("second"), v1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	blob, version, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(blob))
	assert.Equal(t, v2, version)
}

func TestStore_SaveConflicts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "k", []byte("first"), 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		version int64
	}{
		{"create over existing", 0},
		{"stale version", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, "k", []byte("lost"), tt.version)
			assert.ErrorIs(t, err, domain.ErrConflict)

			blob, _, err := store.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "first", string(blob))
		})
	}

	_, err = store.Save(ctx, "other", []byte("x"), 3)
	assert.ErrorIs(t, err, domain.ErrConflict, "updating a missing key")
}

func TestStore_ConcurrentWritersOneWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "k", []byte("base"), 0)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Save(ctx, "k", []byte("update"), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 3, conflicts)
}

// ==================== Driver Failures ====================

func TestStore_LoadQueryError(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectQuery("SELECT blob, version FROM state").
		WithArgs("k").
		WillReturnError(errors.New("disk I/O error"))

	_, _, err := store.Load(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading state "k"`)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestStore_SaveExecError(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec("INSERT INTO state").
		WithArgs("k", []byte("blob"), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	_, err := store.Save(context.Background(), "k", []byte("blob"), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestStore_SaveNoRowsIsConflict(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec("UPDATE state SET blob").
		WithArgs([]byte("blob"), sqlmock.AnyArg(), "k", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Save(context.Background(), "k", []byte("blob"), 3)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_SaveRowsAffectedError(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec("UPDATE state SET blob").
		WithArgs([]byte("blob"), sqlmock.AnyArg(), "k", int64(3)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver gave up")))

	_, err := store.Save(context.Background(), "k", []byte("blob"), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver gave up")
}

func TestStore_Path(t *testing.T) {
	store, _ := setupMockStore(t)
	assert.Equal(t, "mock.db", store.Path())
}
