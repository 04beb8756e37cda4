package coordinator

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"time"
)

func TestWeightedTotal(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   float64
	}{
		{"all tens", Scores{10, 10, 10, 10, 10}, 10.0},
		{"all zeros", Scores{}, 0.0},
		{"mixed", Scores{Innovation: 7, Technical: 8, Presentation: 6, Feasibility: 9, Impact: 5}, 7.2},
		{"rounds to one decimal", Scores{Innovation: 7.5, Technical: 8.5, Presentation: 6, Feasibility: 9, Impact: 5}, 7.4},
		{"half step rounds up", Scores{Innovation: 8.7, Technical: 0.6, Presentation: 4.1, Feasibility: 5.8, Impact: 3.4}, 4.4},
	}
	for _, tt := range tests {
		t.Run("Happy path - "+tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeightedTotal(tt.scores), 1e-9)
		})
	}

	t.Run("Unhappy path - out of range criteria", func(t *testing.T) {
		assert.ErrorIs(t, Scores{Innovation: 11}.validate(), ErrValidation)
		assert.ErrorIs(t, Scores{Impact: -1}.validate(), ErrValidation)
		assert.ErrorIs(t, Scores{Technical: math.NaN()}.validate(), ErrValidation)
		assert.NoError(t, Scores{10, 0, 5.5, 10, 0}.validate())
	})
}

type evaluationFixture struct {
	store       *storage.GormStore
	notifier    *recordingNotifier
	activity    *memoryActivityLog
	recorder    *ActivityRecorder
	coordinator *EvaluationCoordinator
}

func newEvaluationFixture(t *testing.T) *evaluationFixture {
	f := &evaluationFixture{
		store:    storagetest.NewTestStore(t),
		notifier: &recordingNotifier{},
		activity: &memoryActivityLog{},
	}
	f.recorder = NewActivityRecorder(f.activity, time.Second)
	f.coordinator = NewEvaluationCoordinator(f.store, f.notifier, f.recorder)
	return f
}

func TestAssignJudge(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - assignment reaches the judge", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")

		evaluation, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, storage.EvaluationPending, evaluation.Status)

		assigned := f.notifier.ofType(realtime.TypeEvaluationAssigned)
		require.Len(t, assigned, 1)
		assert.Equal(t, uint(60), assigned[0].UserID)

		assignments, err := f.coordinator.JudgeAssignments(ctx, judge.ID)
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, "Rocket", assignments[0].TeamName)

		f.recorder.Wait()
		assert.Contains(t, f.activity.actions(), "evaluation.assigned")
	})

	t.Run("Happy path - same pair in another round", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")

		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)
		_, err = f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 2)
		assert.NoError(t, err)
	})

	t.Run("Unhappy path - duplicate assignment", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)

		_, err = f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Unhappy path - bad round or unknown parties", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")

		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 0)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.coordinator.AssignJudge(ctx, adminActor, "TEAM-404", judge.ID, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", 999, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.coordinator.JudgeAssignments(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubmitScore(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - score completes the evaluation", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)

		score, err := f.coordinator.SubmitScore(ctx, judge.ID, "TEAM-001", Scores{7, 8, 6, 9, 5}, " solid ")
		require.NoError(t, err)
		assert.InDelta(t, 7.2, score.TotalScore, 1e-9)
		assert.Equal(t, "solid", score.Feedback)

		evaluation, err := f.store.Evaluations().Get(ctx, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, storage.EvaluationCompleted, evaluation.Status)

		submitted := f.notifier.ofType(realtime.TypeScoreSubmitted)
		require.Len(t, submitted, 2)
		assert.ElementsMatch(t, []access.Role{access.RoleAdmin, access.RoleSuperAdmin},
			[]access.Role{submitted[0].Role, submitted[1].Role})
	})

	t.Run("Happy path - resubmission overwrites the score", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)

		_, err = f.coordinator.SubmitScore(ctx, judge.ID, "TEAM-001", Scores{}, "")
		require.NoError(t, err)
		_, err = f.coordinator.SubmitScore(ctx, judge.ID, "TEAM-001", Scores{10, 10, 10, 10, 10}, "great")
		require.NoError(t, err)

		scores, err := f.store.Scores().GetByTeam(ctx, "TEAM-001")
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.InDelta(t, 10.0, scores[0].TotalScore, 1e-9)
		assert.Equal(t, "great", scores[0].Feedback)
	})

	t.Run("Unhappy path - judge not assigned", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")

		_, err := f.coordinator.SubmitScore(ctx, judge.ID, "TEAM-001", Scores{5, 5, 5, 5, 5}, "")
		require.ErrorIs(t, err, ErrForbidden)

		scores, err := f.store.Scores().GetByTeam(ctx, "TEAM-001")
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("Unhappy path - criteria out of range", func(t *testing.T) {
		f := newEvaluationFixture(t)
		judge := seedJudge(t, f.store, 60, "ada")
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		_, err := f.coordinator.AssignJudge(ctx, adminActor, "TEAM-001", judge.ID, 1)
		require.NoError(t, err)

		_, err = f.coordinator.SubmitScore(ctx, judge.ID, "TEAM-001", Scores{Innovation: 12}, "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - teams ranked by average score", func(t *testing.T) {
		f := newEvaluationFixture(t)
		ada := seedJudge(t, f.store, 60, "ada")
		alan := seedJudge(t, f.store, 61, "alan")
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		seedTeam(t, f.store, "TEAM-002", "Comet")
		seedTeam(t, f.store, "TEAM-003", "Nebula")
		for _, team := range []string{"TEAM-001", "TEAM-002"} {
			for _, judge := range []*storage.Judge{ada, alan} {
				_, err := f.coordinator.AssignJudge(ctx, adminActor, team, judge.ID, 1)
				require.NoError(t, err)
			}
		}

		submit := func(judgeID uint, team string, s Scores) {
			_, err := f.coordinator.SubmitScore(ctx, judgeID, team, s, "")
			require.NoError(t, err)
		}
		submit(ada.ID, "TEAM-001", Scores{5, 5, 5, 5, 5})
		submit(alan.ID, "TEAM-001", Scores{6, 6, 6, 6, 6})
		submit(ada.ID, "TEAM-002", Scores{9, 9, 9, 9, 9})

		board, err := f.coordinator.Leaderboard(ctx, 1)
		require.NoError(t, err)
		require.Len(t, board, 2)
		assert.Equal(t, "TEAM-002", board[0].TeamID)
		assert.Equal(t, "Comet", board[0].TeamName)
		assert.InDelta(t, 9.0, board[0].AverageScore, 1e-9)
		assert.Equal(t, 1, board[0].JudgeCount)
		assert.Equal(t, "TEAM-001", board[1].TeamID)
		assert.InDelta(t, 5.5, board[1].AverageScore, 1e-9)
		assert.Equal(t, 2, board[1].JudgeCount)
	})

	t.Run("Unhappy path - invalid round", func(t *testing.T) {
		f := newEvaluationFixture(t)

		_, err := f.coordinator.Leaderboard(ctx, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
