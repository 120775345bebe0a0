package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/application/subscription/usecases"
	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils"
)

type SubscriptionHandler struct {
	grantUC grantSubscriptionUseCase
	logger  logger.Interface
}

func NewSubscriptionHandler(grantUC grantSubscriptionUseCase, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{grantUC: grantUC, logger: logger}
}

type GrantSubscriptionRequest struct {
	UserID         string `json:"user_id" binding:"required,snowflake"`
	RoleID         string `json:"role_id" binding:"required,snowflake"`
	DurationMonths int    `json:"duration_months" binding:"duration"`
}

// GrantSubscription gives a role without a payment.
func (h *SubscriptionHandler) GrantSubscription(c *gin.Context) {
	var req GrantSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid grant request", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	sub, err := h.grantUC.Execute(c.Request.Context(), usecases.GrantSubscriptionCommand{
		UserID:         req.UserID,
		RoleID:         req.RoleID,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		h.logger.Errorw("failed to grant subscription", "user_id", req.UserID, "role_id", req.RoleID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, toSubscriptionResponse(sub), "subscription granted")
}
