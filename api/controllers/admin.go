package controllers

import (
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"net/http"
	"strconv"
	"strings"
)

const teamIDAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type AdminController struct {
	store       storage.Store
	checkpoints *coordinator.CheckpointCoordinator
	evaluations *coordinator.EvaluationCoordinator
}

func NewAdminController(store storage.Store, checkpoints *coordinator.CheckpointCoordinator, evaluations *coordinator.EvaluationCoordinator) *AdminController {
	return &AdminController{
		store:       store,
		checkpoints: checkpoints,
		evaluations: evaluations,
	}
}

func (c *AdminController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	group := guards.Protected(api, "/admin", access.CapManageTeams)

	group.GET("/teams", c.listTeams)
	group.POST("/teams", c.createTeam)
	group.GET("/teams/:id", c.getTeam)
	group.GET("/rooms", c.listRooms)
	group.POST("/rooms", c.createRoom)
	group.GET("/problem-statements", c.listProblemStatements)
	group.POST("/problem-statements", c.createProblemStatement)

	checkpoints := group.Group("/teams/:id", transport.RequireCapability(access.CapManageCheckpoints))
	checkpoints.POST("/checkpoints/1", c.completeCheckpoint1)
	checkpoints.POST("/checkpoints/2", c.completeCheckpoint2)
	checkpoints.POST("/checkpoints/3", c.completeCheckpoint3)
	checkpoints.POST("/refresh", c.refreshToCheckpoint1)

	judging := group.Group("", transport.RequireCapability(access.CapAssignJudges))
	judging.GET("/judges", c.listJudges)
	judging.POST("/evaluations", c.assignJudge)
	judging.GET("/leaderboard", c.leaderboard)
}

// @Security BearerToken
// listTeams godoc
// @Summary List all teams
// @Tags admin
// @Produce json
// @Success 200 {array} models.TeamResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/teams [get]
func (c *AdminController) listTeams(g *gin.Context) {
	teams, err := c.store.Teams().GetAll(g.Request.Context())
	if err != nil {
		respondError(g, "TEAM", err)
		return
	}
	responses := make([]models.TeamResponse, 0, len(teams))
	for _, t := range teams {
		responses = append(responses, models.TransformTeamFromStorage(t))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security BearerToken
// createTeam godoc
// @Summary Register a team
// @Description The id is generated as TEAM-XXXXXX when omitted.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CreateTeamRequest true "Team"
// @Success 201 {object} models.TeamResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/teams [post]
func (c *AdminController) createTeam(g *gin.Context) {
	var req models.CreateTeamRequest
	if err := g.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(g, "invalid request, missing team name")
		return
	}
	id := strings.ToUpper(strings.TrimSpace(req.ID))
	if id == "" {
		suffix, err := gonanoid.Generate(teamIDAlphabet, 6)
		if err != nil {
			respondError(g, "TEAM", err)
			return
		}
		id = "TEAM-" + suffix
	}

	team := &storage.Team{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := c.store.Teams().Create(g.Request.Context(), team); err != nil {
		respondError(g, "TEAM", err)
		return
	}
	logging.Log.Infof("TEAM: created team %s (%s)", team.ID, team.Name)
	g.JSON(http.StatusCreated, models.TransformTeamFromStorage(team))
}

// @Security BearerToken
// getTeam godoc
// @Summary Team with participants and checkpoints
// @Tags admin
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} models.TeamProgressResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/teams/{id} [get]
func (c *AdminController) getTeam(g *gin.Context) {
	progress, err := c.checkpoints.TeamProgress(g.Request.Context(), g.Param("id"))
	if err != nil {
		respondError(g, "TEAM", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformProgress(progress))
}

// @Security BearerToken
// completeCheckpoint1 godoc
// @Summary Record attendance (checkpoint 1)
// @Tags checkpoints
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body models.Checkpoint1Request true "Attendance"
// @Success 200 {object} models.Checkpoint1Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/admin/teams/{id}/checkpoints/1 [post]
func (c *AdminController) completeCheckpoint1(g *gin.Context) {
	var req models.Checkpoint1Request
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	result, err := c.checkpoints.CompleteCheckpoint1(g.Request.Context(), actor(g), g.Param("id"), req.WifiOptIn, models.TransformParticipants(req.Participants))
	if err != nil {
		respondError(g, "CHECKPOINT", err)
		return
	}
	g.JSON(http.StatusOK, models.Checkpoint1Response{
		Status:       result.Status,
		PresentCount: result.PresentCount,
		TotalCount:   result.TotalCount,
		Note:         result.Note,
	})
}

// @Security BearerToken
// completeCheckpoint2 godoc
// @Summary Issue the team login and a room (checkpoint 2)
// @Description Repeating the call before a refresh returns the same password and room.
// @Tags checkpoints
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} models.Checkpoint2Response
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/teams/{id}/checkpoints/2 [post]
func (c *AdminController) completeCheckpoint2(g *gin.Context) {
	result, err := c.checkpoints.CompleteCheckpoint2(g.Request.Context(), actor(g), g.Param("id"))
	if err != nil {
		respondError(g, "CHECKPOINT", err)
		return
	}
	g.JSON(http.StatusOK, models.Checkpoint2Response{
		Username: result.Username,
		Password: result.Password,
		RoomID:   result.RoomID,
		RoomName: result.RoomName,
		Reused:   result.Reused,
	})
}

// @Security BearerToken
// completeCheckpoint3 godoc
// @Summary Final check (checkpoint 3)
// @Tags checkpoints
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body models.Checkpoint3Request false "Notes"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/teams/{id}/checkpoints/3 [post]
func (c *AdminController) completeCheckpoint3(g *gin.Context) {
	var req models.Checkpoint3Request
	if g.Request.ContentLength > 0 {
		if err := g.ShouldBindJSON(&req); err != nil {
			badRequest(g, "invalid request format")
			return
		}
	}
	if err := c.checkpoints.CompleteCheckpoint3(g.Request.Context(), actor(g), g.Param("id"), req.Notes); err != nil {
		respondError(g, "CHECKPOINT", err)
		return
	}
	g.JSON(http.StatusOK, models.MessageResponse{Message: "checkpoint 3 completed"})
}

// @Security BearerToken
// refreshToCheckpoint1 godoc
// @Summary Roll the team back to checkpoint 1
// @Description Deletes the team login, frees the room seat and removes checkpoints 2 and 3.
// @Tags checkpoints
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/teams/{id}/refresh [post]
func (c *AdminController) refreshToCheckpoint1(g *gin.Context) {
	if err := c.checkpoints.RefreshToCheckpoint1(g.Request.Context(), actor(g), g.Param("id")); err != nil {
		respondError(g, "CHECKPOINT", err)
		return
	}
	g.JSON(http.StatusOK, models.MessageResponse{Message: "team refreshed to checkpoint 1"})
}

// @Security BearerToken
// listRooms godoc
// @Summary List rooms with their fill level
// @Tags admin
// @Produce json
// @Success 200 {array} storage.Room
// @Router /api/admin/rooms [get]
func (c *AdminController) listRooms(g *gin.Context) {
	rooms, err := c.store.Rooms().GetAll(g.Request.Context())
	if err != nil {
		respondError(g, "ROOM", err)
		return
	}
	g.JSON(http.StatusOK, rooms)
}

// @Security BearerToken
// createRoom godoc
// @Summary Add a room
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.RoomRequest true "Room"
// @Success 201 {object} storage.Room
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/rooms [post]
func (c *AdminController) createRoom(g *gin.Context) {
	var req models.RoomRequest
	if err := g.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.Capacity < 1 {
		badRequest(g, "invalid request, missing name or capacity")
		return
	}
	room := &storage.Room{Name: strings.TrimSpace(req.Name), Capacity: req.Capacity}
	if err := c.store.Rooms().Create(g.Request.Context(), room); err != nil {
		respondError(g, "ROOM", err)
		return
	}
	logging.Log.Infof("ROOM: created room %s with capacity %d", room.Name, room.Capacity)
	g.JSON(http.StatusCreated, room)
}

// @Security BearerToken
// listProblemStatements godoc
// @Summary List problem statements
// @Tags admin
// @Produce json
// @Success 200 {array} storage.ProblemStatement
// @Router /api/admin/problem-statements [get]
func (c *AdminController) listProblemStatements(g *gin.Context) {
	statements, err := c.store.ProblemStatements().GetAll(g.Request.Context())
	if err != nil {
		respondError(g, "PROBLEM", err)
		return
	}
	g.JSON(http.StatusOK, statements)
}

// @Security BearerToken
// createProblemStatement godoc
// @Summary Add a problem statement
// @Description maxTeams 0 means unlimited.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.ProblemStatementRequest true "Problem statement"
// @Success 201 {object} storage.ProblemStatement
// @Failure 400 {object} models.ErrorResponse
// @Router /api/admin/problem-statements [post]
func (c *AdminController) createProblemStatement(g *gin.Context) {
	var req models.ProblemStatementRequest
	if err := g.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" || req.MaxTeams < 0 {
		badRequest(g, "invalid request, missing title")
		return
	}
	statement := &storage.ProblemStatement{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		MaxTeams:    req.MaxTeams,
	}
	if err := c.store.ProblemStatements().Create(g.Request.Context(), statement); err != nil {
		respondError(g, "PROBLEM", err)
		return
	}
	logging.Log.Infof("PROBLEM: created problem statement %d", statement.ID)
	g.JSON(http.StatusCreated, statement)
}

// @Security BearerToken
// listJudges godoc
// @Summary List judges
// @Tags admin
// @Produce json
// @Success 200 {array} storage.Judge
// @Router /api/admin/judges [get]
func (c *AdminController) listJudges(g *gin.Context) {
	judges, err := c.store.Judges().GetAll(g.Request.Context())
	if err != nil {
		respondError(g, "JUDGE", err)
		return
	}
	g.JSON(http.StatusOK, judges)
}

// @Security BearerToken
// assignJudge godoc
// @Summary Assign a judge to a team for a round
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.AssignJudgeRequest true "Assignment"
// @Success 201 {object} models.EvaluationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/admin/evaluations [post]
func (c *AdminController) assignJudge(g *gin.Context) {
	var req models.AssignJudgeRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" || req.JudgeID == 0 {
		badRequest(g, "invalid request, missing team or judge")
		return
	}
	if req.Round == 0 {
		req.Round = 1
	}
	evaluation, err := c.evaluations.AssignJudge(g.Request.Context(), actor(g), req.TeamID, req.JudgeID, req.Round)
	if err != nil {
		respondError(g, "EVAL", err)
		return
	}
	g.JSON(http.StatusCreated, models.TransformEvaluation(evaluation, ""))
}

// @Security BearerToken
// leaderboard godoc
// @Summary Teams ranked by average judge score
// @Tags admin
// @Produce json
// @Param round query int false "Round (default 1)"
// @Success 200 {array} coordinator.LeaderboardEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /api/admin/leaderboard [get]
func (c *AdminController) leaderboard(g *gin.Context) {
	round := 1
	if raw := g.Query("round"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(g, fmt.Sprintf("invalid round %q", raw))
			return
		}
		round = v
	}
	board, err := c.evaluations.Leaderboard(g.Request.Context(), round)
	if err != nil {
		respondError(g, "EVAL", err)
		return
	}
	g.JSON(http.StatusOK, board)
}
