package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/shared/utils"
	"github.com/rolegate/rolegate/internal/shared/version"
)

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"status":  "ok",
		"version": version.String(),
	})
}
