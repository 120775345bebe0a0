package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/plan/usecases"
	"github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils"
)

type PlanHandler struct {
	listPlansUC  listPlansUseCase
	setPlanUC    setPlanUseCase
	deletePlanUC deletePlanUseCase
	logger       logger.Interface
}

func NewPlanHandler(
	listPlansUC listPlansUseCase,
	setPlanUC setPlanUseCase,
	deletePlanUC deletePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		listPlansUC:  listPlansUC,
		setPlanUC:    setPlanUC,
		deletePlanUC: deletePlanUC,
		logger:       logger,
	}
}

type SetPlanRequest struct {
	Price          string `json:"price" binding:"required,numeric"`
	Currency       string `json:"currency" binding:"omitempty,currency"`
	RoleID         string `json:"role_id" binding:"required,snowflake"`
	DurationMonths int    `json:"duration_months" binding:"duration"`
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list plans", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// GetPanel returns the rendered price list shown to buyers.
func (h *PlanHandler) GetPanel(c *gin.Context) {
	text, err := h.listPlansUC.RenderPanel(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to render plan panel", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"panel": text})
}

// SetPlan creates the plan named in the path or replaces its settings.
func (h *PlanHandler) SetPlan(c *gin.Context) {
	name := c.Param("name")

	var req SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid set plan request", "plan", name, "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid price", err.Error()))
		return
	}

	result, err := h.setPlanUC.Execute(c.Request.Context(), usecases.SetPlanCommand{
		Name:           name,
		Price:          price,
		Currency:       req.Currency,
		RoleID:         req.RoleID,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		h.logger.Errorw("failed to set plan", "plan", name, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, toPlanResponse(result.Plan), "plan created")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan updated", toPlanResponse(result.Plan))
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	name := c.Param("name")

	if err := h.deletePlanUC.Execute(c.Request.Context(), name); err != nil {
		h.logger.Warnw("failed to delete plan", "plan", name, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan deleted", nil)
}
