package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/application/order/usecases"
	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils"
)

type OrderHandler struct {
	createOrderUC  createOrderUseCase
	getOrderUC     getOrderUseCase
	fulfillOrderUC fulfillOrderUseCase
	checkOrderUC   checkOrderUseCase
	logger         logger.Interface
}

func NewOrderHandler(
	createOrderUC createOrderUseCase,
	getOrderUC getOrderUseCase,
	fulfillOrderUC fulfillOrderUseCase,
	checkOrderUC checkOrderUseCase,
	logger logger.Interface,
) *OrderHandler {
	return &OrderHandler{
		createOrderUC:  createOrderUC,
		getOrderUC:     getOrderUC,
		fulfillOrderUC: fulfillOrderUC,
		checkOrderUC:   checkOrderUC,
		logger:         logger,
	}
}

// CreateOrderRequest names the plan either by id or by name.
type CreateOrderRequest struct {
	UserID   string `json:"user_id" binding:"required,snowflake"`
	PlanID   uint   `json:"plan_id"`
	PlanName string `json:"plan"`
	Method   string `json:"method" binding:"required"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	PayURL   string `json:"pay_url"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Plan     string `json:"plan"`
	Method   string `json:"method"`
}

type FulfillOrderResponse struct {
	OrderID      string                `json:"order_id"`
	AlreadyPaid  bool                  `json:"already_paid"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

type CheckOrderResponse struct {
	OrderID string                `json:"order_id"`
	Paid    bool                  `json:"paid"`
	Fulfill *FulfillOrderResponse `json:"fulfillment,omitempty"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create order request", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.createOrderUC.Execute(c.Request.Context(), usecases.CreateOrderCommand{
		UserID:   req.UserID,
		PlanID:   req.PlanID,
		PlanName: req.PlanName,
		Method:   req.Method,
	})
	if err != nil {
		h.logger.Errorw("failed to create order", "user_id", req.UserID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, CreateOrderResponse{
		OrderID:  result.OrderID,
		PayURL:   result.PayURL,
		Amount:   result.Amount.StringFixed(2),
		Currency: result.Currency.String(),
		Plan:     result.PlanName,
		Method:   result.Method,
	}, "order created")
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.getOrderUC.Execute(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toOrderResponse(o))
}

// FulfillOrder processes a pending order by hand, e.g. after a lost
// notification or a failed grant.
func (h *OrderHandler) FulfillOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	result, err := h.fulfillOrderUC.Execute(c.Request.Context(), usecases.FulfillOrderCommand{
		OrderID: orderID,
		Source:  usecases.SourceAdmin,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toFulfillOrderResponse(result))
}

// CheckOrder asks the payment platform whether the order was paid and
// fulfills it when it was.
func (h *OrderHandler) CheckOrder(c *gin.Context) {
	result, err := h.checkOrderUC.Execute(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := CheckOrderResponse{OrderID: result.OrderID, Paid: result.Paid}
	if result.Fulfill != nil {
		f := toFulfillOrderResponse(result.Fulfill)
		resp.Fulfill = &f
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func toFulfillOrderResponse(r *usecases.FulfillOrderResult) FulfillOrderResponse {
	resp := FulfillOrderResponse{OrderID: r.OrderID, AlreadyPaid: r.AlreadyPaid}
	if r.Subscription != nil {
		s := toSubscriptionResponse(r.Subscription)
		resp.Subscription = &s
	}
	return resp
}
