package storage_test

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAllocateFirstFree(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - fills rooms in id order", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		rooms := store.Rooms()
		require.NoError(t, rooms.Create(ctx, &storage.Room{Name: "Lab A", Capacity: 1}))
		require.NoError(t, rooms.Create(ctx, &storage.Room{Name: "Lab B", Capacity: 2}))

		first, err := rooms.AllocateFirstFree(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Lab A", first.Name)
		assert.Equal(t, 1, first.Filled)

		second, err := rooms.AllocateFirstFree(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Lab B", second.Name)

		third, err := rooms.AllocateFirstFree(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Lab B", third.Name)
		assert.Equal(t, 2, third.Filled)
	})

	t.Run("Unhappy path - every room is full", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		rooms := store.Rooms()
		require.NoError(t, rooms.Create(ctx, &storage.Room{Name: "Lab A", Capacity: 1}))

		_, err := rooms.AllocateFirstFree(ctx)
		require.NoError(t, err)
		_, err = rooms.AllocateFirstFree(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		all, err := rooms.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, all[0].Filled, "filled must never exceed capacity")
	})

	t.Run("Happy path - release frees a seat and stops at zero", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		rooms := store.Rooms()
		room := &storage.Room{Name: "Lab A", Capacity: 1}
		require.NoError(t, rooms.Create(ctx, room))

		_, err := rooms.AllocateFirstFree(ctx)
		require.NoError(t, err)
		require.NoError(t, rooms.Release(ctx, room.ID))
		require.NoError(t, rooms.Release(ctx, room.ID))

		got, err := rooms.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Filled)
	})

	t.Run("Unhappy path - duplicate room name", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Rooms().Create(ctx, &storage.Room{Name: "Lab A", Capacity: 1}))
		err := store.Rooms().Create(ctx, &storage.Room{Name: "Lab A", Capacity: 3})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}
