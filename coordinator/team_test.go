package coordinator

import (
	"context"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/alex-pricope/hackathon-coordinator/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type teamFixture struct {
	store       *storage.GormStore
	notifier    *recordingNotifier
	activity    *memoryActivityLog
	recorder    *ActivityRecorder
	coordinator *TeamCoordinator
}

func newTeamFixture(t *testing.T) *teamFixture {
	f := &teamFixture{
		store:    storagetest.NewTestStore(t),
		notifier: &recordingNotifier{},
		activity: &memoryActivityLog{},
	}
	f.recorder = NewActivityRecorder(f.activity, time.Second)
	f.coordinator = NewTeamCoordinator(f.store, nil, f.notifier, f.recorder)
	return f
}

func seedStatement(t *testing.T, store storage.Store, title string, maxTeams int) *storage.ProblemStatement {
	t.Helper()
	statement := &storage.ProblemStatement{Title: title, MaxTeams: maxTeams}
	require.NoError(t, store.ProblemStatements().Create(context.Background(), statement))
	return statement
}

func TestSelectProblemStatement(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - selection moves the team forward", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 2)

		team, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.TeamStatusProblemSelected, team.Status)

		stored, err := f.store.Teams().Get(ctx, "TEAM-001")
		require.NoError(t, err)
		require.NotNil(t, stored.ProblemStatementID)
		assert.Equal(t, statement.ID, *stored.ProblemStatementID)

		f.recorder.Wait()
		assert.Contains(t, f.activity.actions(), "team.problem_selected")
	})

	t.Run("Happy path - reselecting a full statement the team holds", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 1)

		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		require.NoError(t, err)
		_, err = f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		assert.NoError(t, err)
	})

	t.Run("Happy path - switching statements before round 1", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		first := seedStatement(t, f.store, "Smart campus", 0)
		second := seedStatement(t, f.store, "Green energy", 0)

		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", first.ID)
		require.NoError(t, err)
		team, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", second.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, *team.ProblemStatementID)
	})

	t.Run("Unhappy path - statement is full", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		seedTeam(t, f.store, "TEAM-002", "Comet")
		statement := seedStatement(t, f.store, "Smart campus", 1)
		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		require.NoError(t, err)

		_, err = f.coordinator.SelectProblemStatement(ctx, "TEAM-002", statement.ID)
		assert.ErrorIs(t, err, ErrResourceExhausted)
	})

	t.Run("Unhappy path - selection locked", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 0)
		_, err := f.coordinator.SetSetting(ctx, adminActor, storage.SettingProblemStatementsLocked, true)
		require.NoError(t, err)

		_, err = f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})

	t.Run("Unhappy path - team already submitted", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 0)
		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		require.NoError(t, err)
		_, err = f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app")
		require.NoError(t, err)

		_, err = f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})

	t.Run("Unhappy path - unknown team or statement", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 0)

		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-404", statement.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.coordinator.SelectProblemStatement(ctx, "TEAM-001", 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubmitRound1(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *teamFixture {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")
		statement := seedStatement(t, f.store, "Smart campus", 0)
		_, err := f.coordinator.SelectProblemStatement(ctx, "TEAM-001", statement.ID)
		require.NoError(t, err)
		return f
	}

	t.Run("Happy path - submission and resubmission", func(t *testing.T) {
		f := setup(t)

		team, err := f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app")
		require.NoError(t, err)
		assert.Equal(t, storage.TeamStatusRound1Submitted, team.Status)
		assert.Equal(t, storage.SubmissionSubmitted, team.SubmissionStatus)

		_, err = f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app-v2")
		require.NoError(t, err)
		stored, err := f.store.Teams().Get(ctx, "TEAM-001")
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/rocket/app-v2", stored.SubmissionURL)
	})

	t.Run("Unhappy path - not a link", func(t *testing.T) {
		f := setup(t)

		_, err := f.coordinator.SubmitRound1(ctx, "TEAM-001", "our repo")
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.coordinator.SubmitRound1(ctx, "TEAM-001", "ftp://files/app.zip")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Unhappy path - no problem statement", func(t *testing.T) {
		f := newTeamFixture(t)
		seedTeam(t, f.store, "TEAM-001", "Rocket")

		_, err := f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app")
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})

	t.Run("Unhappy path - round 1 locked", func(t *testing.T) {
		f := setup(t)
		_, err := f.coordinator.SetSetting(ctx, adminActor, storage.SettingRound1Locked, true)
		require.NoError(t, err)

		_, err = f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app")
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})

	t.Run("Unhappy path - team moved past round 1", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.store.Teams().UpdateStatus(ctx, "TEAM-001", storage.TeamStatusFinalist))

		_, err := f.coordinator.SubmitRound1(ctx, "TEAM-001", "https://github.com/rocket/app")
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	})
}

func TestSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - locks default to open and broadcast on change", func(t *testing.T) {
		f := newTeamFixture(t)

		settings, err := f.coordinator.Settings(ctx)
		require.NoError(t, err)
		assert.Len(t, settings, len(storage.KnownSettings))
		assert.False(t, settings[storage.SettingMentorshipLocked])

		settings, err = f.coordinator.SetSetting(ctx, adminActor, storage.SettingMentorshipLocked, true)
		require.NoError(t, err)
		assert.True(t, settings[storage.SettingMentorshipLocked])
		assert.False(t, settings[storage.SettingRound1Locked])

		updates := f.notifier.ofType(realtime.TypeSettingsUpdated)
		require.Len(t, updates, 1)
		assert.True(t, updates[0].Broadcast)
	})

	t.Run("Unhappy path - unknown key", func(t *testing.T) {
		f := newTeamFixture(t)

		_, err := f.coordinator.SetSetting(ctx, adminActor, "voting_locked", true)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, f.notifier.ofType(realtime.TypeSettingsUpdated))
	})
}
