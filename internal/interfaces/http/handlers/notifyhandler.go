package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/application/order/dispatch"
	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/shared/constants"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils/logutil"
)

const notifyFailBody = "fail"

// NotifyHandler receives payment notifications. It verifies them, hands
// successful ones to the fulfillment queue and acknowledges right away.
type NotifyHandler struct {
	gateway paymentgateway.Gateway
	queue   fulfillmentQueue
	metrics callbackRecorder
	logger  logger.Interface
}

// NewNotifyHandler accepts a nil gateway; every notification is then
// rejected with 400.
func NewNotifyHandler(gateway paymentgateway.Gateway, queue fulfillmentQueue, metrics callbackRecorder, logger logger.Interface) *NotifyHandler {
	return &NotifyHandler{
		gateway: gateway,
		queue:   queue,
		metrics: metrics,
		logger:  logger,
	}
}

func (h *NotifyHandler) HandleNotify(c *gin.Context) {
	if h.gateway == nil {
		h.record(constants.CallbackUnsupported)
		c.String(http.StatusBadRequest, "unsupported platform")
		return
	}

	params, err := h.gateway.ParseCallback(c.Request)
	if err != nil {
		h.record(constants.CallbackMalformed)
		h.logger.Warnw("malformed payment notification",
			"platform", h.gateway.Platform(),
			"client_ip", c.ClientIP(),
			"error", err,
		)
		c.String(http.StatusBadRequest, notifyFailBody)
		return
	}

	result, err := h.gateway.VerifyCallback(params)
	if err != nil {
		h.record(constants.CallbackBadSign)
		var sigErr *apperrors.SignatureError
		if errors.As(err, &sigErr) {
			h.logger.Warnw("payment notification failed verification",
				"platform", h.gateway.Platform(),
				"client_ip", c.ClientIP(),
				"reason", sigErr.Reason,
				"sign", logutil.CallbackSignature(params),
			)
		} else {
			h.logger.Warnw("payment notification rejected", "platform", h.gateway.Platform(), "error", err)
		}
		c.String(http.StatusForbidden, notifyFailBody)
		return
	}

	if !result.Succeeded {
		h.record(constants.CallbackNotPaid)
		h.logger.Infow("payment notification without success status",
			"platform", h.gateway.Platform(),
			"order_id", result.OrderID,
		)
		c.String(http.StatusOK, h.gateway.AckToken())
		return
	}

	err = h.queue.Enqueue(dispatch.Job{
		OrderID:         result.OrderID,
		CallbackPayload: result.Params,
		ReportedAmount:  result.Amount,
	})
	if err != nil {
		h.record(constants.CallbackQueueError)
		h.logger.Errorw("failed to queue verified payment",
			"order_id", result.OrderID,
			"trade_no", result.TradeNo,
			"error", err,
		)
		c.String(http.StatusInternalServerError, notifyFailBody)
		return
	}

	h.record(constants.CallbackQueued)
	h.logger.Infow("payment notification accepted",
		"platform", h.gateway.Platform(),
		"order_id", result.OrderID,
		"trade_no", result.TradeNo,
	)
	c.String(http.StatusOK, h.gateway.AckToken())
}

func (h *NotifyHandler) record(result string) {
	if h.metrics != nil {
		h.metrics.CallbackHandled(result)
	}
}
