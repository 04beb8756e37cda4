package storage_test

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestCheckpointStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - upsert replaces the record", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Teams().Create(ctx, &storage.Team{ID: "TEAM-001", Name: "Rocket"}))

		_, err := store.Checkpoints().Upsert(ctx, "TEAM-001", storage.CheckpointPartiallyCompleted,
			storage.Checkpoint1Data{PresentCount: 2, TotalCount: 3, Note: "2 out of 3 participants were present"}, nil)
		require.NoError(t, err)

		now := time.Now().UTC()
		_, err = store.Checkpoints().Upsert(ctx, "TEAM-001", storage.CheckpointCompleted,
			storage.Checkpoint1Data{PresentCount: 3, TotalCount: 3}, &now)
		require.NoError(t, err)

		all, err := store.Checkpoints().GetByTeam(ctx, "TEAM-001")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, storage.CheckpointCompleted, all[0].Status)
		assert.NotNil(t, all[0].CompletedAt)

		decoded, err := all[0].Decoded()
		require.NoError(t, err)
		data, ok := decoded.(storage.Checkpoint1Data)
		require.True(t, ok)
		assert.Equal(t, 3, data.PresentCount)
		assert.Empty(t, data.Note)
	})

	t.Run("Happy path - set status keeps the payload", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Teams().Create(ctx, &storage.Team{ID: "TEAM-001", Name: "Rocket"}))
		now := time.Now().UTC()
		_, err := store.Checkpoints().Upsert(ctx, "TEAM-001", storage.CheckpointCompleted,
			storage.Checkpoint1Data{WifiOptIn: true, PresentCount: 2, TotalCount: 2}, &now)
		require.NoError(t, err)

		require.NoError(t, store.Checkpoints().SetStatus(ctx, "TEAM-001", 1, storage.CheckpointPartiallyCompleted, nil))

		cp, err := store.Checkpoints().Get(ctx, "TEAM-001", 1)
		require.NoError(t, err)
		assert.Equal(t, storage.CheckpointPartiallyCompleted, cp.Status)
		assert.Nil(t, cp.CompletedAt)
		decoded, err := cp.Decoded()
		require.NoError(t, err)
		assert.True(t, decoded.(storage.Checkpoint1Data).WifiOptIn)
	})

	t.Run("Happy path - delete only the named checkpoints", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Teams().Create(ctx, &storage.Team{ID: "TEAM-001", Name: "Rocket"}))
		for _, data := range []storage.CheckpointData{
			storage.Checkpoint1Data{PresentCount: 2, TotalCount: 2},
			storage.Checkpoint2Data{Username: "TEAM-001", Password: "pw"},
			storage.Checkpoint3Data{Notes: "done"},
		} {
			_, err := store.Checkpoints().Upsert(ctx, "TEAM-001", storage.CheckpointCompleted, data, nil)
			require.NoError(t, err)
		}

		require.NoError(t, store.Checkpoints().Delete(ctx, "TEAM-001", 2, 3))

		all, err := store.Checkpoints().GetByTeam(ctx, "TEAM-001")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 1, all[0].CheckpointNumber)
	})

	t.Run("Unhappy path - missing checkpoint", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		_, err := store.Checkpoints().Get(ctx, "TEAM-404", 1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		err = store.Checkpoints().SetStatus(ctx, "TEAM-404", 1, storage.CheckpointCompleted, nil)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDecodeCheckpointData(t *testing.T) {
	t.Run("Happy path - empty payload decodes to nil", func(t *testing.T) {
		d, err := storage.DecodeCheckpointData(2, nil)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("Happy path - variant chosen by number", func(t *testing.T) {
		raw, err := storage.EncodeCheckpointData(storage.Checkpoint2Data{Username: "TEAM-001", Password: "secret", RoomName: "Lab A"})
		require.NoError(t, err)
		d, err := storage.DecodeCheckpointData(2, raw)
		require.NoError(t, err)
		data, ok := d.(storage.Checkpoint2Data)
		require.True(t, ok)
		assert.Equal(t, "secret", data.Password)
		assert.Equal(t, "Lab A", data.RoomName)
	})

	t.Run("Unhappy path - unknown checkpoint number", func(t *testing.T) {
		_, err := storage.DecodeCheckpointData(4, []byte(`{}`))
		assert.Error(t, err)
	})
}
