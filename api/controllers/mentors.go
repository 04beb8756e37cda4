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

type MentorController struct {
	mentorship *coordinator.MentorshipCoordinator
}

func NewMentorController(mentorship *coordinator.MentorshipCoordinator) *MentorController {
	return &MentorController{mentorship: mentorship}
}

func (c *MentorController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	group := guards.Protected(api, "/mentors", access.CapMentorTeams)

	group.GET("/me", c.me)
	group.GET("/queue", c.queue)
	group.POST("/queue/:entryId/resolve", c.resolve)
	group.POST("/queue/:entryId/cancel", c.cancel)
	group.PUT("/availability", c.setAvailability)
	group.PUT("/meet-link", c.setMeetLink)
}

func (c *MentorController) mentor(g *gin.Context) (*storage.Mentor, bool) {
	mentor, err := c.mentorship.MentorForUser(g.Request.Context(), actor(g).UserID)
	if err != nil {
		respondError(g, "MENTOR", err)
		return nil, false
	}
	return mentor, true
}

// @Security BearerToken
// me godoc
// @Summary The calling mentor's profile
// @Tags mentors
// @Produce json
// @Success 200 {object} models.MentorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/mentors/me [get]
func (c *MentorController) me(g *gin.Context) {
	mentor, ok := c.mentor(g)
	if !ok {
		return
	}
	waiting, err := c.mentorship.WaitingTeamsCount(g.Request.Context(), mentor.ID)
	if err != nil {
		respondError(g, "MENTOR", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformMentor(mentor, waiting))
}

// @Security BearerToken
// queue godoc
// @Summary Waiting entries, oldest first
// @Tags mentors
// @Produce json
// @Success 200 {array} models.QueueEntryResponse
// @Router /api/mentors/queue [get]
func (c *MentorController) queue(g *gin.Context) {
	mentor, ok := c.mentor(g)
	if !ok {
		return
	}
	items, err := c.mentorship.WaitingQueue(g.Request.Context(), mentor.ID)
	if err != nil {
		respondError(g, "QUEUE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformQueue(items))
}

// @Security BearerToken
// resolve godoc
// @Summary Resolve a waiting entry
// @Tags mentors
// @Accept json
// @Produce json
// @Param entryId path int true "Queue entry ID"
// @Param request body models.CloseSessionRequest false "Notes"
// @Success 200 {object} models.QueueEntryResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/mentors/queue/{entryId}/resolve [post]
func (c *MentorController) resolve(g *gin.Context) {
	c.close(g, func(mentorID, entryID uint, req models.CloseSessionRequest) (*storage.MentorshipQueueEntry, error) {
		return c.mentorship.ResolveSession(g.Request.Context(), mentorID, entryID, req.Notes)
	})
}

// @Security BearerToken
// cancel godoc
// @Summary Cancel a waiting entry
// @Tags mentors
// @Accept json
// @Produce json
// @Param entryId path int true "Queue entry ID"
// @Param request body models.CloseSessionRequest false "Reason"
// @Success 200 {object} models.QueueEntryResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/mentors/queue/{entryId}/cancel [post]
func (c *MentorController) cancel(g *gin.Context) {
	c.close(g, func(mentorID, entryID uint, req models.CloseSessionRequest) (*storage.MentorshipQueueEntry, error) {
		return c.mentorship.CancelSession(g.Request.Context(), mentorID, entryID, req.Reason)
	})
}

func (c *MentorController) close(g *gin.Context, do func(mentorID, entryID uint, req models.CloseSessionRequest) (*storage.MentorshipQueueEntry, error)) {
	entryID, ok := uintParam(g, "entryId")
	if !ok {
		return
	}
	var req models.CloseSessionRequest
	if g.Request.ContentLength > 0 {
		if err := g.ShouldBindJSON(&req); err != nil {
			badRequest(g, "invalid request format")
			return
		}
	}
	mentor, ok := c.mentor(g)
	if !ok {
		return
	}
	entry, err := do(mentor.ID, entryID, req)
	if err != nil {
		respondError(g, "QUEUE", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformQueueEntry(entry, ""))
}

// @Security BearerToken
// setAvailability godoc
// @Summary Toggle whether teams can book the calling mentor
// @Tags mentors
// @Accept json
// @Produce json
// @Param request body models.AvailabilityRequest true "Availability"
// @Success 200 {object} models.MentorResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/mentors/availability [put]
func (c *MentorController) setAvailability(g *gin.Context) {
	var req models.AvailabilityRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	mentor, ok := c.mentor(g)
	if !ok {
		return
	}
	updated, err := c.mentorship.SetAvailable(g.Request.Context(), mentor.ID, req.Available)
	if err != nil {
		respondError(g, "MENTOR", err)
		return
	}
	c.respondMentor(g, updated)
}

// @Security BearerToken
// setMeetLink godoc
// @Summary Set or clear the calling mentor's call link
// @Tags mentors
// @Accept json
// @Produce json
// @Param request body models.MeetLinkRequest true "Meet link"
// @Success 200 {object} models.MentorResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/mentors/meet-link [put]
func (c *MentorController) setMeetLink(g *gin.Context) {
	var req models.MeetLinkRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	mentor, ok := c.mentor(g)
	if !ok {
		return
	}
	updated, err := c.mentorship.UpdateMeetLink(g.Request.Context(), mentor.ID, req.MeetLink)
	if err != nil {
		respondError(g, "MENTOR", err)
		return
	}
	c.respondMentor(g, updated)
}

func (c *MentorController) respondMentor(g *gin.Context, mentor *storage.Mentor) {
	waiting, err := c.mentorship.WaitingTeamsCount(g.Request.Context(), mentor.ID)
	if err != nil {
		respondError(g, "MENTOR", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformMentor(mentor, waiting))
}
