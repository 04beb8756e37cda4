package controllers

import (
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
)

// TeamController serves the team login account. The team is always the one the
// account belongs to, never a path parameter.
type TeamController struct {
	store      storage.Store
	mentorship *coordinator.MentorshipCoordinator
	teams      *coordinator.TeamCoordinator
}

func NewTeamController(store storage.Store, mentorship *coordinator.MentorshipCoordinator, teams *coordinator.TeamCoordinator) *TeamController {
	return &TeamController{
		store:      store,
		mentorship: mentorship,
		teams:      teams,
	}
}

func (c *TeamController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	group := guards.Protected(api, "/teams", access.CapBookMentors)

	group.GET("/me", c.me)
	group.GET("/mentors", c.listMentors)
	group.GET("/sessions", c.listSessions)
	group.POST("/sessions", c.bookSession)
	group.POST("/sessions/:entryId/cancel", c.cancelSession)
	group.GET("/problem-statements", c.listProblemStatements)
	group.PUT("/problem-statement", c.selectProblemStatement)
	group.PUT("/submission", c.submitRound1)
}

func (c *TeamController) teamID(g *gin.Context) (string, bool) {
	user, err := c.store.Users().Get(g.Request.Context(), actor(g).UserID)
	if err != nil {
		respondError(g, "TEAM", err)
		return "", false
	}
	if user.TeamID == nil {
		logging.Log.Warnf("TEAM: account %d has no team", user.ID)
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: "account is not bound to a team"})
		return "", false
	}
	return *user.TeamID, true
}

// @Security BearerToken
// me godoc
// @Summary The calling team
// @Tags teams
// @Produce json
// @Success 200 {object} models.TeamResponse
// @Router /api/teams/me [get]
func (c *TeamController) me(g *gin.Context) {
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	team, err := c.store.Teams().Get(g.Request.Context(), teamID)
	if err != nil {
		respondError(g, "TEAM", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformTeamFromStorage(team))
}

// @Security BearerToken
// listMentors godoc
// @Summary Mentors with availability and waiting teams
// @Tags teams
// @Produce json
// @Success 200 {array} models.MentorResponse
// @Router /api/teams/mentors [get]
func (c *TeamController) listMentors(g *gin.Context) {
	summaries, err := c.mentorship.ListMentors(g.Request.Context())
	if err != nil {
		respondError(g, "MENTOR", err)
		return
	}
	responses := make([]models.MentorResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, models.TransformMentor(s.Mentor, s.WaitingTeams))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security BearerToken
// listSessions godoc
// @Summary The team's mentorship entries, newest first
// @Tags teams
// @Produce json
// @Success 200 {array} models.QueueEntryResponse
// @Router /api/teams/sessions [get]
func (c *TeamController) listSessions(g *gin.Context) {
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	entries, err := c.mentorship.TeamSessions(g.Request.Context(), teamID)
	if err != nil {
		respondError(g, "QUEUE", err)
		return
	}
	responses := make([]models.QueueEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, models.TransformQueueEntry(e, ""))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security BearerToken
// bookSession godoc
// @Summary Join a mentor's queue
// @Tags teams
// @Accept json
// @Produce json
// @Param request body models.BookSessionRequest true "Booking"
// @Success 201 {object} models.QueueEntryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse "Mentor unavailable or mentorship locked"
// @Failure 409 {object} models.ErrorResponse "Already waiting or queue full"
// @Failure 422 {object} models.ErrorResponse
// @Router /api/teams/sessions [post]
func (c *TeamController) bookSession(g *gin.Context) {
	var req models.BookSessionRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.MentorID == 0 {
		badRequest(g, "invalid request, missing mentor")
		return
	}
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	entry, err := c.mentorship.BookSession(g.Request.Context(), teamID, req.MentorID, req.Query)
	if err != nil {
		respondError(g, "QUEUE", err)
		return
	}
	g.JSON(http.StatusCreated, models.TransformQueueEntry(entry, ""))
}

// @Security BearerToken
// cancelSession godoc
// @Summary Withdraw a waiting entry
// @Tags teams
// @Produce json
// @Param entryId path int true "Queue entry ID"
// @Success 200 {object} models.QueueEntryResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/teams/sessions/{entryId}/cancel [post]
func (c *TeamController) cancelSession(g *gin.Context) {
	entryID, ok := uintParam(g, "entryId")
	if !ok {
		return
	}
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	entry, err := c.mentorship.CancelByTeam(g.Request.Context(), teamID, entryID)
	if err != nil {
		respondError(g, "QUEUE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformQueueEntry(entry, ""))
}

// @Security BearerToken
// listProblemStatements godoc
// @Summary Problem statements open for selection
// @Tags teams
// @Produce json
// @Success 200 {array} storage.ProblemStatement
// @Router /api/teams/problem-statements [get]
func (c *TeamController) listProblemStatements(g *gin.Context) {
	statements, err := c.store.ProblemStatements().GetAll(g.Request.Context())
	if err != nil {
		respondError(g, "PROBLEM", err)
		return
	}
	g.JSON(http.StatusOK, statements)
}

// @Security BearerToken
// selectProblemStatement godoc
// @Summary Choose the team's problem statement
// @Tags teams
// @Accept json
// @Produce json
// @Param request body models.SelectProblemRequest true "Selection"
// @Success 200 {object} models.TeamResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/teams/problem-statement [put]
func (c *TeamController) selectProblemStatement(g *gin.Context) {
	var req models.SelectProblemRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ProblemStatementID == 0 {
		badRequest(g, "invalid request, missing problem statement")
		return
	}
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	team, err := c.teams.SelectProblemStatement(g.Request.Context(), teamID, req.ProblemStatementID)
	if err != nil {
		respondError(g, "TEAM", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformTeamFromStorage(team))
}

// @Security BearerToken
// submitRound1 godoc
// @Summary Submit or replace the round 1 link
// @Tags teams
// @Accept json
// @Produce json
// @Param request body models.SubmissionRequest true "Submission"
// @Success 200 {object} models.TeamResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/teams/submission [put]
func (c *TeamController) submitRound1(g *gin.Context) {
	var req models.SubmissionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	teamID, ok := c.teamID(g)
	if !ok {
		return
	}
	team, err := c.teams.SubmitRound1(g.Request.Context(), teamID, strings.TrimSpace(req.URL))
	if err != nil {
		respondError(g, "TEAM", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformTeamFromStorage(team))
}
