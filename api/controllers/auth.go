package controllers

import (
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
)

type AuthController struct {
	users  storage.UserStorage
	issuer *transport.TokenIssuer
}

func NewAuthController(users storage.UserStorage, issuer *transport.TokenIssuer) *AuthController {
	return &AuthController{users: users, issuer: issuer}
}

func (c *AuthController) RegisterRoutes(api *gin.RouterGroup, guards transport.Guards) {
	api.POST("/auth/login", guards.AuthLimit(), c.login)
	api.GET("/auth/me", transport.AuthMiddleware(c.issuer), c.me)
}

// login godoc
// @Summary Exchange username and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (c *AuthController) login(g *gin.Context) {
	var req models.LoginRequest
	if err := g.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		badRequest(g, "invalid request, missing username or password")
		return
	}

	user, err := c.users.GetByUsername(g.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		respondError(g, "AUTH", err)
		return
	}
	if user == nil || !access.CheckPassword(user.PasswordHash, req.Password) {
		logging.Log.Warnf("AUTH: failed login for %s", req.Username)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, expires, err := c.issuer.Issue(access.Actor{UserID: user.ID, Role: user.Role})
	if err != nil {
		respondError(g, "AUTH", err)
		return
	}

	logging.Log.Infof("AUTH: user %d (%s) logged in", user.ID, user.Role)
	g.JSON(http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expires, User: models.TransformUserFromStorage(user)})
}

// @Security BearerToken
// me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/me [get]
func (c *AuthController) me(g *gin.Context) {
	user, err := c.users.Get(g.Request.Context(), actor(g).UserID)
	if err != nil {
		respondError(g, "AUTH", err)
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}
