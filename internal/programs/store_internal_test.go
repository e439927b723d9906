package programs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveKeepsCreationTime(testInstance *testing.T) {
	store, openError := Open(filepath.Join(testInstance.TempDir(), "programs.db"))
	require.NoError(testInstance, openError)
	defer func() { require.NoError(testInstance, store.Close()) }()

	createdAt := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)
	store.clock = func() time.Time { return createdAt }

	_, saveError := store.Save(context.Background(), "square", "fd 10")
	require.NoError(testInstance, saveError)

	store.clock = func() time.Time { return updatedAt }
	updated, updateError := store.Save(context.Background(), "square", "fd 20")
	require.NoError(testInstance, updateError)

	require.Equal(testInstance, "fd 20", updated.Source)
	require.True(testInstance, createdAt.Equal(updated.CreatedAt))
	require.True(testInstance, updatedAt.Equal(updated.UpdatedAt))
}
