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
	"net/http"
	"strconv"
	"strings"
)

const (
	minStaffPasswordLength = 8
	defaultActivityLimit   = 50
	maxActivityLimit       = 500
)

type SuperAdminController struct {
	store        storage.Store
	teams        *coordinator.TeamCoordinator
	activity     storage.ActivityLogStorage
	passwordCost int
}

// NewSuperAdminController accepts a nil activity log; the activity routes then
// serve an empty list.
func NewSuperAdminController(store storage.Store, teams *coordinator.TeamCoordinator, activity storage.ActivityLogStorage, passwordCost int) *SuperAdminController {
	return &SuperAdminController{
		store:        store,
		teams:        teams,
		activity:     activity,
		passwordCost: passwordCost,
	}
}

func (c *SuperAdminController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	group := guards.Protected(api, "/super-admin", access.CapManageStaff)

	group.GET("/users", c.listUsers)
	group.POST("/users", c.createUser)
	group.GET("/settings", transport.RequireCapability(access.CapManageSettings), c.getSettings)
	group.PUT("/settings", transport.RequireCapability(access.CapManageSettings), c.setSetting)
	group.GET("/activity", c.listActivity)
	group.DELETE("/activity", c.clearActivity)
}

// @Security BearerToken
// listUsers godoc
// @Summary List accounts, optionally filtered by role
// @Tags super-admin
// @Produce json
// @Param role query string false "Role filter"
// @Success 200 {array} models.UserResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/super-admin/users [get]
func (c *SuperAdminController) listUsers(g *gin.Context) {
	roles := access.AllRoles
	if raw := g.Query("role"); raw != "" {
		role, err := access.ParseRole(raw)
		if err != nil {
			g.JSON(http.StatusUnprocessableEntity, &models.ErrorResponse{Error: err.Error()})
			return
		}
		roles = []access.Role{role}
	}

	users := make([]models.UserResponse, 0)
	for _, role := range roles {
		found, err := c.store.Users().GetByRole(g.Request.Context(), role)
		if err != nil {
			respondError(g, "ADMIN", err)
			return
		}
		for _, u := range found {
			users = append(users, models.TransformUserFromStorage(u))
		}
	}
	g.JSON(http.StatusOK, users)
}

// @Security BearerToken
// createUser godoc
// @Summary Create a staff account
// @Description ADMIN, JUDGE and MENTOR accounts. Team accounts are issued at checkpoint 2.
// @Tags super-admin
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "Account"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/super-admin/users [post]
func (c *SuperAdminController) createUser(g *gin.Context) {
	var req models.CreateUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	user, err := c.newStaffUser(req)
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}

	ctx := g.Request.Context()
	err = c.store.Transaction(ctx, func(tx storage.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		expertise := strings.TrimSpace(req.Expertise)
		switch user.Role {
		case access.RoleMentor:
			return tx.Mentors().Create(ctx, &storage.Mentor{UserID: user.ID, Name: user.Name, Expertise: expertise, IsAvailable: true})
		case access.RoleJudge:
			return tx.Judges().Create(ctx, &storage.Judge{UserID: user.ID, Name: user.Name, Expertise: expertise})
		}
		return nil
	})
	if err != nil {
		respondError(g, "ADMIN", err)
		return
	}

	logging.Log.Infof("ADMIN: created %s account %s by user %d", user.Role, user.Username, actor(g).UserID)
	g.JSON(http.StatusCreated, models.TransformUserFromStorage(user))
}

func (c *SuperAdminController) newStaffUser(req models.CreateUserRequest) (*storage.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", coordinator.ErrValidation)
	}
	role, err := access.ParseRole(req.Role)
	if err != nil || role == access.RoleTeam || role == access.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: role must be ADMIN, JUDGE or MENTOR", coordinator.ErrValidation)
	}
	if len(req.Password) < minStaffPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", coordinator.ErrValidation, minStaffPasswordLength)
	}
	hash, err := access.HashPassword(req.Password, c.passwordCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}
	return &storage.User{Username: username, Name: name, PasswordHash: hash, Role: role}, nil
}

// @Security BearerToken
// getSettings godoc
// @Summary Current global locks
// @Tags super-admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/super-admin/settings [get]
func (c *SuperAdminController) getSettings(g *gin.Context) {
	settings, err := c.teams.Settings(g.Request.Context())
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, settings)
}

// @Security BearerToken
// setSetting godoc
// @Summary Lock or unlock a feature
// @Tags super-admin
// @Accept json
// @Produce json
// @Param request body models.SettingRequest true "Setting"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/super-admin/settings [put]
func (c *SuperAdminController) setSetting(g *gin.Context) {
	var req models.SettingRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "invalid request format")
		return
	}
	settings, err := c.teams.SetSetting(g.Request.Context(), actor(g), req.Key, req.Locked)
	if err != nil {
		respondError(g, "SETTINGS", err)
		return
	}
	g.JSON(http.StatusOK, settings)
}

// @Security BearerToken
// listActivity godoc
// @Summary Most recent activity entries, newest first
// @Tags super-admin
// @Produce json
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} storage.ActivityEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /api/super-admin/activity [get]
func (c *SuperAdminController) listActivity(g *gin.Context) {
	limit := defaultActivityLimit
	if raw := g.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			badRequest(g, "invalid limit")
			return
		}
		limit = min(v, maxActivityLimit)
	}
	if c.activity == nil {
		g.JSON(http.StatusOK, []*storage.ActivityEntry{})
		return
	}

	entries, err := c.activity.GetRecent(g.Request.Context(), int32(limit))
	if err != nil {
		respondError(g, "ACTIVITY", err)
		return
	}
	if entries == nil {
		entries = []*storage.ActivityEntry{}
	}
	g.JSON(http.StatusOK, entries)
}

// @Security BearerToken
// clearActivity godoc
// @Summary Delete the whole activity log
// @Tags super-admin
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /api/super-admin/activity [delete]
func (c *SuperAdminController) clearActivity(g *gin.Context) {
	if c.activity != nil {
		if err := c.activity.DeleteAll(g.Request.Context()); err != nil {
			respondError(g, "ACTIVITY", err)
			return
		}
	}
	logging.Log.Infof("ACTIVITY: log cleared by user %d", actor(g).UserID)
	g.JSON(http.StatusOK, models.MessageResponse{Message: "activity log cleared"})
}
