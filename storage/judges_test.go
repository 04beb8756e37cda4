package storage_test

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEvaluationStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - create then list by judge", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		evaluation := &storage.Evaluation{TeamID: "TEAM-001", JudgeID: 1, Round: 1}
		require.NoError(t, store.Evaluations().Create(ctx, evaluation))
		assert.Equal(t, storage.EvaluationPending, evaluation.Status)

		list, err := store.Evaluations().ListByJudge(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "TEAM-001", list[0].TeamID)
	})

	t.Run("Unhappy path - duplicate assignment", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Evaluations().Create(ctx, &storage.Evaluation{TeamID: "TEAM-001", JudgeID: 1, Round: 1}))

		err := store.Evaluations().Create(ctx, &storage.Evaluation{TeamID: "TEAM-001", JudgeID: 1, Round: 1})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		list, err := store.Evaluations().ListByJudge(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Happy path - set status", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		evaluation := &storage.Evaluation{TeamID: "TEAM-001", JudgeID: 1, Round: 1}
		require.NoError(t, store.Evaluations().Create(ctx, evaluation))
		require.NoError(t, store.Evaluations().SetStatus(ctx, evaluation.ID, storage.EvaluationCompleted))

		got, err := store.Evaluations().Get(ctx, "TEAM-001", 1, 1)
		require.NoError(t, err)
		assert.Equal(t, storage.EvaluationCompleted, got.Status)
	})
}

func TestScoreStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - resubmission overwrites", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Scores().Upsert(ctx, &storage.TeamScore{
			TeamID: "TEAM-001", JudgeID: 1, Round: 1, Innovation: 5, TotalScore: 1.3, Feedback: "ok",
		}))
		require.NoError(t, store.Scores().Upsert(ctx, &storage.TeamScore{
			TeamID: "TEAM-001", JudgeID: 1, Round: 1, Innovation: 10, TotalScore: 2.5, Feedback: "better",
		}))

		scores, err := store.Scores().GetByTeam(ctx, "TEAM-001")
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, 10.0, scores[0].Innovation)
		assert.Equal(t, 2.5, scores[0].TotalScore)
		assert.Equal(t, "better", scores[0].Feedback)
	})

	t.Run("Happy path - list by round", func(t *testing.T) {
		store := storagetest.NewTestStore(t)
		require.NoError(t, store.Scores().Upsert(ctx, &storage.TeamScore{TeamID: "TEAM-001", JudgeID: 1, Round: 1}))
		require.NoError(t, store.Scores().Upsert(ctx, &storage.TeamScore{TeamID: "TEAM-001", JudgeID: 1, Round: 2}))

		round1, err := store.Scores().ListByRound(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, round1, 1)
	})
}
