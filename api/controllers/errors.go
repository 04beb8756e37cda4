package controllers

import (
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/models"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

// statusFor maps coordinator and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, coordinator.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, coordinator.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrConflict), errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrPreconditionFailed):
		return http.StatusForbidden
	case errors.Is(err, coordinator.ErrResourceExhausted):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(g *gin.Context, area string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Log.Errorf("%s: %s %s failed: %v", area, g.Request.Method, g.Request.URL.Path, err)
		g.JSON(status, &models.ErrorResponse{Error: "internal error"})
		return
	}
	g.JSON(status, &models.ErrorResponse{Error: err.Error()})
}

func badRequest(g *gin.Context, message string) {
	g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: message})
}

func actor(g *gin.Context) access.Actor {
	a, _ := transport.ActorFrom(g)
	return a
}

func uintParam(g *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(g.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(g, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
