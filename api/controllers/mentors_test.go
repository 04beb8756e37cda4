package controllers

import (
	"context"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/access"
	testutils "github.com/alex-pricope/hackathon-coordinator/api/controllers/testing"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

func TestMentorQueue(t *testing.T) {
	env := setupTestEnv(t)
	mentorUser, mentor := env.createMentor(t, "mia", true)
	mentorHeaders := env.headers(t, mentorUser)
	otherUser, _ := env.createMentor(t, "otto", true)
	team := env.headers(t, env.createTeamAccount(t, "TEAM-1", "Gophers"))

	book := func(t *testing.T, query string) models.QueueEntryResponse {
		t.Helper()
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/teams/sessions",
			models.BookSessionRequest{MentorID: mentor.ID, Query: query}, team)
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		return testutils.Decode[models.QueueEntryResponse](res)
	}
	first := book(t, "deadlock in tests")

	t.Run("Happy path - queue carries team names", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/mentors/queue", nil, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code)

		queue := testutils.Decode[[]models.QueueEntryResponse](res)
		require.Len(t, queue, 1)
		assert.Equal(t, "Gophers", queue[0].TeamName)
		assert.Equal(t, "deadlock in tests", queue[0].Query)
	})

	t.Run("Happy path - me counts waiting teams", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/mentors/me", nil, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, 1, testutils.Decode[models.MentorResponse](res).WaitingTeams)
	})

	t.Run("Unhappy path - another mentor cannot resolve", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, fmt.Sprintf("/api/mentors/queue/%d/resolve", first.ID), nil, env.headers(t, otherUser))
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("Happy path - resolve with notes", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, fmt.Sprintf("/api/mentors/queue/%d/resolve", first.ID),
			models.CloseSessionRequest{Notes: "use -race"}, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		resolved := testutils.Decode[models.QueueEntryResponse](res)
		assert.Equal(t, storage.QueueResolved, resolved.Status)
		assert.Equal(t, "use -race", resolved.Notes)
	})

	t.Run("Unhappy path - resolve twice", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, fmt.Sprintf("/api/mentors/queue/%d/resolve", first.ID), nil, mentorHeaders)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Happy path - cancel with a reason", func(t *testing.T) {
		second := book(t, "flaky CI")
		res := testutils.PerformRequest(env.router, http.MethodPost, fmt.Sprintf("/api/mentors/queue/%d/cancel", second.ID),
			models.CloseSessionRequest{Reason: "out of time"}, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())

		cancelled := testutils.Decode[models.QueueEntryResponse](res)
		assert.Equal(t, storage.QueueCancelled, cancelled.Status)
		assert.Equal(t, "out of time", cancelled.CancelReason)
	})

	t.Run("Unhappy path - unknown entry", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/mentors/queue/9999/resolve", nil, mentorHeaders)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("Unhappy path - teams cannot open the mentor queue", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/mentors/queue", nil, team)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}

func TestMentorProfile(t *testing.T) {
	env := setupTestEnv(t)
	mentorUser, mentor := env.createMentor(t, "mia", true)
	mentorHeaders := env.headers(t, mentorUser)

	t.Run("Happy path - go unavailable", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/mentors/availability",
			models.AvailabilityRequest{Available: false}, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
		assert.False(t, testutils.Decode[models.MentorResponse](res).IsAvailable)

		stored, err := env.store.Mentors().Get(context.Background(), mentor.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsAvailable)
	})

	t.Run("Happy path - set meet link", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/mentors/meet-link",
			models.MeetLinkRequest{MeetLink: "https://meet.example.com/mia"}, mentorHeaders)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
		assert.Equal(t, "https://meet.example.com/mia", testutils.Decode[models.MentorResponse](res).MeetLink)
	})

	t.Run("Unhappy path - meet link must be a URL", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/mentors/meet-link",
			models.MeetLinkRequest{MeetLink: "call me"}, mentorHeaders)
		assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	})

	t.Run("Unhappy path - mentor account without a profile", func(t *testing.T) {
		bare := env.headers(t, env.createUser(t, "bare", access.RoleMentor, nil))
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/mentors/me", nil, bare)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
