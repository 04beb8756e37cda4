package storage_test

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func seedMentorAndTeam(t *testing.T, store storage.Store) (*storage.Mentor, *storage.Team) {
	t.Helper()
	ctx := context.Background()
	mentor := &storage.Mentor{UserID: 10, Name: "Grace", IsAvailable: true}
	require.NoError(t, store.Mentors().Create(ctx, mentor))
	team := &storage.Team{ID: "TEAM-001", Name: "Rocket"}
	require.NoError(t, store.Teams().Create(ctx, team))
	return mentor, team
}

func TestQueueStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - waiting entries come back in FIFO order", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		mentor, _ := seedMentorAndTeam(t, store)
		require.NoError(t, store.Teams().Create(ctx, &storage.Team{ID: "TEAM-002", Name: "Comet"}))

		first := &storage.MentorshipQueueEntry{TeamID: "TEAM-001", MentorID: mentor.ID, Query: "auth"}
		second := &storage.MentorshipQueueEntry{TeamID: "TEAM-002", MentorID: mentor.ID, Query: "deploy"}
		require.NoError(t, store.Queue().Create(ctx, first))
		require.NoError(t, store.Queue().Create(ctx, second))

		waiting, err := store.Queue().ListWaiting(ctx, mentor.ID)
		require.NoError(t, err)
		require.Len(t, waiting, 2)
		assert.Equal(t, first.ID, waiting[0].ID)
		assert.Equal(t, second.ID, waiting[1].ID)

		count, err := store.Queue().CountWaiting(ctx, mentor.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		has, err := store.Queue().HasWaiting(ctx, "TEAM-001", mentor.ID)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("Happy path - transition closes the entry", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		mentor, team := seedMentorAndTeam(t, store)
		entry := &storage.MentorshipQueueEntry{TeamID: team.ID, MentorID: mentor.ID, Query: "help"}
		require.NoError(t, store.Queue().Create(ctx, entry))

		require.NoError(t, store.Queue().Transition(ctx, entry.ID, storage.QueueResolved, "fixed the bug", ""))

		got, err := store.Queue().Get(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.QueueResolved, got.Status)
		assert.Equal(t, "fixed the bug", got.Notes)
		assert.NotNil(t, got.ClosedAt)

		has, err := store.Queue().HasWaiting(ctx, team.ID, mentor.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("Unhappy path - terminal entries cannot transition again", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		mentor, team := seedMentorAndTeam(t, store)
		entry := &storage.MentorshipQueueEntry{TeamID: team.ID, MentorID: mentor.ID, Query: "help"}
		require.NoError(t, store.Queue().Create(ctx, entry))
		require.NoError(t, store.Queue().Transition(ctx, entry.ID, storage.QueueCancelled, "", "no show"))

		err := store.Queue().Transition(ctx, entry.ID, storage.QueueResolved, "late", "")
		assert.ErrorIs(t, err, storage.ErrStaleState)

		got, err := store.Queue().Get(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.QueueCancelled, got.Status)
		assert.Equal(t, "no show", got.CancelReason)
	})
}

func TestMentorStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - toggle availability and meet link", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		mentor, _ := seedMentorAndTeam(t, store)

		require.NoError(t, store.Mentors().SetAvailable(ctx, mentor.ID, false))
		require.NoError(t, store.Mentors().SetMeetLink(ctx, mentor.ID, "https://meet.example.com/grace"))

		got, err := store.Mentors().GetByUser(ctx, mentor.UserID)
		require.NoError(t, err)
		assert.False(t, got.IsAvailable)
		assert.Equal(t, "https://meet.example.com/grace", got.MeetLink)
	})

	t.Run("Unhappy path - unknown mentor", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		_, err := store.Mentors().Get(ctx, 99)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.Mentors().SetAvailable(ctx, 99, true), storage.ErrNotFound)
	})

	t.Run("Happy path - lock inside a transaction", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		mentor, _ := seedMentorAndTeam(t, store)

		err := store.Transaction(ctx, func(tx storage.Store) error {
			locked, err := tx.Mentors().Lock(ctx, mentor.ID)
			if err != nil {
				return err
			}
			assert.Equal(t, mentor.Name, locked.Name)
			return nil
		})
		require.NoError(t, err)
	})
}
