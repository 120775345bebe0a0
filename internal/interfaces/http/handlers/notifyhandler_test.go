package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/application/order/dispatch"
	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/interfaces/http/handlers/testutil"
	"github.com/rolegate/rolegate/internal/shared/constants"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type stubGateway struct {
	parseErr  error
	verifyErr error
	result    *paymentgateway.CallbackResult
}

func (g *stubGateway) Platform() paymentgateway.Platform { return paymentgateway.PlatformEpusdt }

func (g *stubGateway) CreateOrder(context.Context, paymentgateway.CreateOrderRequest) (string, error) {
	return "", errors.New("not used")
}

func (g *stubGateway) ParseCallback(*http.Request) (map[string]string, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return map[string]string{"order_id": "O1", "signature": "abcdef0123456789"}, nil
}

func (g *stubGateway) VerifyCallback(map[string]string) (*paymentgateway.CallbackResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.result, nil
}

func (g *stubGateway) AckToken() string { return "ok" }

type stubQueue struct {
	jobs []dispatch.Job
	err  error
}

func (q *stubQueue) Enqueue(job dispatch.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type stubRecorder struct {
	results []string
}

func (r *stubRecorder) CallbackHandled(result string) {
	r.results = append(r.results, result)
}

func postNotify(h *NotifyHandler) *httptest.ResponseRecorder {
	c, w := testutil.NewTestContext(http.MethodPost, "/notify", nil)
	c.Request.Body = http.NoBody
	h.HandleNotify(c)
	return w
}

func TestNotifyHandler(t *testing.T) {
	paid := &paymentgateway.CallbackResult{
		OrderID:   "O1",
		Succeeded: true,
		TradeNo:   "T1",
		Amount:    decimal.RequireFromString("10"),
		Params:    map[string]string{"order_id": "O1", "status": "2"},
	}

	tests := []struct {
		name       string
		gateway    *stubGateway
		queueErr   error
		wantStatus int
		wantBody   string
		wantResult string
		wantJobs   int
	}{
		{
			name:       "paid is queued and acked",
			gateway:    &stubGateway{result: paid},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
			wantResult: constants.CallbackQueued,
			wantJobs:   1,
		},
		{
			name:       "not paid is acked without queueing",
			gateway:    &stubGateway{result: &paymentgateway.CallbackResult{OrderID: "O1"}},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
			wantResult: constants.CallbackNotPaid,
		},
		{
			name:       "bad signature",
			gateway:    &stubGateway{verifyErr: &apperrors.SignatureError{Platform: "epusdt", Reason: "mismatch"}},
			wantStatus: http.StatusForbidden,
			wantBody:   "fail",
			wantResult: constants.CallbackBadSign,
		},
		{
			name:       "malformed body",
			gateway:    &stubGateway{parseErr: errors.New("unexpected EOF")},
			wantStatus: http.StatusBadRequest,
			wantBody:   "fail",
			wantResult: constants.CallbackMalformed,
		},
		{
			name:       "queue stopped",
			gateway:    &stubGateway{result: paid},
			queueErr:   dispatch.ErrStopped,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "fail",
			wantResult: constants.CallbackQueueError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &stubQueue{err: tt.queueErr}
			rec := &stubRecorder{}
			h := NewNotifyHandler(tt.gateway, queue, rec, logger.NewNopLogger())

			w := postNotify(h)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(w.Body.String()))
			assert.Equal(t, []string{tt.wantResult}, rec.results)
			require.Len(t, queue.jobs, tt.wantJobs)
			if tt.wantJobs == 1 {
				assert.Equal(t, "O1", queue.jobs[0].OrderID)
				assert.Equal(t, "2", queue.jobs[0].CallbackPayload["status"])
				assert.True(t, queue.jobs[0].ReportedAmount.Equal(decimal.NewFromInt(10)))
			}
		})
	}
}

func TestNotifyHandler_NoGateway(t *testing.T) {
	queue := &stubQueue{}
	rec := &stubRecorder{}
	h := NewNotifyHandler(nil, queue, rec, logger.NewNopLogger())

	w := postNotify(h)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported platform", w.Body.String())
	assert.Equal(t, []string{constants.CallbackUnsupported}, rec.results)
	assert.Empty(t, queue.jobs)
}
