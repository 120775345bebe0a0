package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ordervo "github.com/rolegate/rolegate/internal/domain/order/valueobjects"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// =====================================================================
// CreateOrder
// =====================================================================

func TestCreateOrder_SameCurrency(t *testing.T) {
	f := newFixture(t)

	res, err := f.create.Execute(context.Background(), CreateOrderCommand{
		UserID: "U1", PlanName: "Month", Method: "TRC20",
	})
	require.NoError(t, err)

	assert.Equal(t, "10.00", res.Amount.StringFixed(2))
	assert.Equal(t, vo.CurrencyUSDT, res.Currency)
	assert.Equal(t, "https://pay.example/O", res.PayURL)
	assert.LessOrEqual(t, len(res.OrderID), 32)

	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, "usdt.trc20", f.gateway.requests[0].MethodCode)
	assert.Equal(t, "Plan-Month", f.gateway.requests[0].Description)

	o, err := f.orders.GetByOrderID(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ordervo.OrderStatusPending, o.Status())
	assert.Equal(t, "10.00", o.PaymentAmount().StringFixed(2))
}

func TestCreateOrder_ConvertsToMethodCurrency(t *testing.T) {
	f := newFixture(t)

	res, err := f.create.Execute(context.Background(), CreateOrderCommand{
		UserID: "U1", PlanID: f.monthID, Method: "alipay",
	})
	require.NoError(t, err)
	assert.Equal(t, "70.00", res.Amount.StringFixed(2))
	assert.Equal(t, vo.CurrencyCNY, res.Currency)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.create.Execute(ctx, CreateOrderCommand{PlanName: "Month", Method: "TRC20"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreateOrderCommand{UserID: "U1", Method: "TRC20"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreateOrderCommand{UserID: "U1", PlanName: "Month", Method: "paypal"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.create.Execute(ctx, CreateOrderCommand{UserID: "U1", PlanName: "Year", Method: "TRC20"})
	assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)

	assert.Empty(t, f.gateway.requests)
}

func TestCreateOrder_GatewayFailureLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = &apperrors.GatewayError{Platform: "epusdt", Op: "create", StatusCode: 502}

	_, err := f.create.Execute(context.Background(), CreateOrderCommand{
		UserID: "U1", PlanName: "Month", Method: "TRC20",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayError(err))

	pending, err := f.orders.ListPendingBetween(context.Background(), testNow.Add(-time.Hour), testNow.Add(time.Second), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCreateOrder_NoGatewayConfigured(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateOrderUseCase(f.orders, f.plans, nil, f.methods, nil, nil, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), CreateOrderCommand{UserID: "U1", PlanName: "Month", Method: "TRC20"})
	assert.True(t, apperrors.IsValidationError(err))
}

// =====================================================================
// FulfillOrder
// =====================================================================

func createOrder(t *testing.T, f *fixture) string {
	t.Helper()
	res, err := f.create.Execute(context.Background(), CreateOrderCommand{
		UserID: "U1", PlanName: "Month", Method: "TRC20",
	})
	require.NoError(t, err)
	return res.OrderID
}

func TestFulfill_ScenarioWithDuplicateCallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := createOrder(t, f)

	res, err := f.fulfill.Execute(ctx, FulfillOrderCommand{
		OrderID:         orderID,
		Source:          SourceWebhook,
		CallbackPayload: map[string]string{"status": "2"},
		ReportedAmount:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyPaid)
	require.NotNil(t, res.Subscription)
	assert.Equal(t, testNow.Unix()+2592000, res.Subscription.ExpireDate())
	assert.Equal(t, 1, f.actor.grantCount())

	o, err := f.orders.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, o.IsPaid())
	assert.Equal(t, "2", o.CallbackPayload()["status"])

	res, err = f.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID, Source: SourceWebhook})
	require.NoError(t, err)
	assert.True(t, res.AlreadyPaid)
	assert.Equal(t, 1, f.actor.grantCount())

	subs, err := f.subs.ListByUser(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestFulfill_ConcurrentCallsGrantOnce(t *testing.T) {
	f := newFixture(t)
	orderID := createOrder(t, f)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.fulfill.Execute(context.Background(), FulfillOrderCommand{OrderID: orderID, Source: SourceWebhook})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.actor.grantCount())

	subs, err := f.subs.ListByUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestFulfill_OrderNotFound(t *testing.T) {
	f := newFixture(t)
	notifier := new(mockNotifier)
	f.fulfill.SetFailureNotifier(notifier)

	_, err := f.fulfill.Execute(context.Background(), FulfillOrderCommand{OrderID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
	notifier.AssertNotCalled(t, "NotifyFulfillmentFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfill_DeletedPlanLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := createOrder(t, f)

	deleted, err := f.plans.DeleteByName(ctx, "Month")
	require.NoError(t, err)
	require.True(t, deleted)

	notifier := new(mockNotifier)
	notifier.On("NotifyFulfillmentFailure", mock.Anything, orderID, "U1", mock.Anything).Once()
	f.fulfill.SetFailureNotifier(notifier)

	_, err = f.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID})
	assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
	assert.Equal(t, 0, f.actor.grantCount())
	notifier.AssertExpectations(t)

	o, err := f.orders.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, o.IsPaid())
}

func TestFulfill_GrantFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := createOrder(t, f)

	f.actor.failGrant = &apperrors.ActorError{Op: "grant", UserID: "U1", RoleID: "R1", Err: errors.New("forbidden")}
	_, err := f.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID})
	require.Error(t, err)
	assert.True(t, apperrors.IsActorError(err))

	o, err := f.orders.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, o.IsPaid())
	subs, err := f.subs.ListByUser(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, subs)

	f.actor.failGrant = nil
	res, err := f.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID, Source: SourceAdmin})
	require.NoError(t, err)
	assert.False(t, res.AlreadyPaid)
	assert.Equal(t, 1, f.actor.grantCount())
}

func TestFulfill_ForeverPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.plans.GetByName(ctx, "Month")
	require.NoError(t, err)
	require.NoError(t, p.Update(p.Price(), p.Currency(), p.RoleID(), vo.Forever()))
	require.NoError(t, f.plans.Save(ctx, p))

	orderID := createOrder(t, f)
	res, err := f.fulfill.Execute(ctx, FulfillOrderCommand{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, vo.ForeverExpiry, res.Subscription.ExpireDate())
}

// =====================================================================
// CheckOrder / GetOrder
// =====================================================================

func TestCheckOrder_UnsupportedGateway(t *testing.T) {
	f := newFixture(t)
	uc := NewCheckOrderUseCase(f.orders, f.gateway, f.fulfill, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), "O1")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedOperation)
}

func TestCheckOrder_PaidOrderIsFulfilled(t *testing.T) {
	f := newFixture(t)
	orderID := createOrder(t, f)

	gw := &queryingGateway{paid: true}
	uc := NewCheckOrderUseCase(f.orders, gw, f.fulfill, logger.NewNopLogger())

	res, err := uc.Execute(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, res.Paid)
	require.NotNil(t, res.Fulfill)
	assert.False(t, res.Fulfill.AlreadyPaid)
	assert.Equal(t, 1, f.actor.grantCount())

	res, err = uc.Execute(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, res.Fulfill.AlreadyPaid)
	assert.Equal(t, 1, f.actor.grantCount())
}

func TestCheckOrder_Unpaid(t *testing.T) {
	f := newFixture(t)
	orderID := createOrder(t, f)

	uc := NewCheckOrderUseCase(f.orders, &queryingGateway{}, f.fulfill, logger.NewNopLogger())
	res, err := uc.Execute(context.Background(), orderID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, 0, f.actor.grantCount())

	_, err = uc.Execute(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	orderID := createOrder(t, f)
	uc := NewGetOrderUseCase(f.orders)

	o, err := uc.Execute(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, "U1", o.UserID())

	_, err = uc.Execute(context.Background(), "")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestReconcilePendingOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := createOrder(t, f)

	gw := &queryingGateway{paid: true}
	check := NewCheckOrderUseCase(f.orders, gw, f.fulfill, logger.NewNopLogger())

	// too young: left to the webhook
	young := NewReconcilePendingOrdersUseCase(f.orders, check, biztime.FixedClock{T: testNow}, logger.NewNopLogger())
	n, err := young.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	later := NewReconcilePendingOrdersUseCase(f.orders, check, biztime.FixedClock{T: testNow.Add(10 * time.Minute)}, logger.NewNopLogger())
	n, err = later.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.actor.grantCount())

	o, err := f.orders.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, o.IsPaid())

	n, err = later.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconcilePendingOrders_QueryFailureSkipsOrder(t *testing.T) {
	f := newFixture(t)
	createOrder(t, f)

	gw := &queryingGateway{err: &apperrors.GatewayError{Platform: "yipay", Op: "query"}}
	check := NewCheckOrderUseCase(f.orders, gw, f.fulfill, logger.NewNopLogger())
	uc := NewReconcilePendingOrdersUseCase(f.orders, check, biztime.FixedClock{T: testNow.Add(time.Hour)}, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
