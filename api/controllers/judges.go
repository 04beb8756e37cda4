package controllers

import (
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/gin-gonic/gin"
	"net/http"
)

type JudgeController struct {
	evaluations *coordinator.EvaluationCoordinator
}

func NewJudgeController(evaluations *coordinator.EvaluationCoordinator) *JudgeController {
	return &JudgeController{evaluations: evaluations}
}

func (c *JudgeController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	group := guards.Protected(api, "/judges", access.CapScoreTeams)

	group.GET("/assignments", c.listAssignments)
	group.POST("/scores", c.submitScore)
}

func (c *JudgeController) judge(g *gin.Context) (*storage.Judge, bool) {
	judge, err := c.evaluations.JudgeForUser(g.Request.Context(), actor(g).UserID)
	if err != nil {
		respondError(g, "JUDGE", err)
		return nil, false
	}
	return judge, true
}

// @Security BearerToken
// listAssignments godoc
// @Summary Evaluations assigned to the calling judge
// @Tags judges
// @Produce json
// @Success 200 {array} models.EvaluationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/judges/assignments [get]
func (c *JudgeController) listAssignments(g *gin.Context) {
	judge, ok := c.judge(g)
	if !ok {
		return
	}
	assignments, err := c.evaluations.JudgeAssignments(g.Request.Context(), judge.ID)
	if err != nil {
		respondError(g, "JUDGE", err)
		return
	}
	responses := make([]models.EvaluationResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, models.TransformEvaluation(a.Evaluation, a.TeamName))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security BearerToken
// submitScore godoc
// @Summary Score an assigned team
// @Description Total = round(innovation*25% + technical*30% + presentation*15% + feasibility*15% + impact*15%, 1). Resubmitting overwrites.
// @Tags judges
// @Accept json
// @Produce json
// @Param request body models.ScoreRequest true "Scores"
// @Success 200 {object} models.ScoreResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/judges/scores [post]
func (c *JudgeController) submitScore(g *gin.Context) {
	var req models.ScoreRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" {
		badRequest(g, "invalid request, missing team")
		return
	}
	judge, ok := c.judge(g)
	if !ok {
		return
	}
	score, err := c.evaluations.SubmitScore(g.Request.Context(), judge.ID, req.TeamID, req.Scores(), req.Feedback)
	if err != nil {
		respondError(g, "EVAL", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformScore(score))
}
