package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/files")
	require.NoError(t, err)

	result, err := store.Save(context.Background(), "planning.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/files/"))
	assert.True(t, strings.HasSuffix(result.ExternalID, ".pdf"))
	assert.Equal(t, int64(9), result.Size)

	file, err := store.Open(result.ExternalID)
	require.NoError(t, err)
	defer file.Close()
	content := make([]byte, result.Size)
	_, err = file.Read(content)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/files")
	require.NoError(t, err)

	result, err := store.Save(context.Background(), "certificate.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), result.ExternalID))
	_, err = os.Stat(filepath.Join(dir, result.ExternalID))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	require.NoError(t, store.Delete(context.Background(), result.ExternalID))
}

func TestLocalStoreCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/files")
	require.NoError(t, err)

	stale, err := store.Save(context.Background(), "old.pdf", strings.NewReader("old"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, stale.ExternalID), past, past))

	fresh, err := store.Save(context.Background(), "new.pdf", strings.NewReader("new"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ExternalID}, deleted)

	_, err = os.Stat(filepath.Join(dir, fresh.ExternalID))
	assert.NoError(t, err)
}

func TestLocalStoreSaveHonorsContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/files")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "planning.pdf", strings.NewReader("x"))
	assert.Error(t, err)
}
