package usecases

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/application/payment/pricing"
	"github.com/rolegate/rolegate/internal/domain/plan"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/infrastructure/database/dbtest"
	"github.com/rolegate/rolegate/internal/infrastructure/lock"
	"github.com/rolegate/rolegate/internal/infrastructure/repository"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/db"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

var testNow = time.Unix(1700000000, 0).UTC()

type fakeGateway struct {
	mu       sync.Mutex
	requests []paymentgateway.CreateOrderRequest
	payURL   string
	err      error
}

func (g *fakeGateway) Platform() paymentgateway.Platform { return paymentgateway.PlatformEpusdt }

func (g *fakeGateway) CreateOrder(_ context.Context, req paymentgateway.CreateOrderRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return g.payURL, nil
}

func (g *fakeGateway) ParseCallback(*http.Request) (map[string]string, error) { return nil, nil }

func (g *fakeGateway) VerifyCallback(map[string]string) (*paymentgateway.CallbackResult, error) {
	return nil, nil
}

func (g *fakeGateway) AckToken() string { return "ok" }

type queryingGateway struct {
	fakeGateway
	paid bool
	err  error
}

func (g *queryingGateway) QueryOrder(context.Context, string) (bool, error) { return g.paid, g.err }

// countingActor records grants; failGrant makes every grant fail.
type countingActor struct {
	mu        sync.Mutex
	grants    int
	revokes   int
	failGrant error
}

func (a *countingActor) Grant(context.Context, string, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failGrant != nil {
		return a.failGrant
	}
	a.grants++
	// widen the race window for concurrent callers
	time.Sleep(time.Millisecond)
	return nil
}

func (a *countingActor) Revoke(context.Context, string, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revokes++
	return nil
}

func (a *countingActor) grantCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.grants
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyFulfillmentFailure(ctx context.Context, orderID, userID string, err error) {
	m.Called(ctx, orderID, userID, err)
}

type fixedRate struct{ rate decimal.Decimal }

func (r fixedRate) USDTToCNY(context.Context) (decimal.Decimal, error) { return r.rate, nil }

type fixture struct {
	orders  *repository.OrderRepository
	plans   *repository.PlanRepository
	subs    *repository.SubscriptionRepository
	gateway *fakeGateway
	actor   *countingActor
	create  *CreateOrderUseCase
	fulfill *FulfillOrderUseCase
	monthID uint
	methods *pricing.MethodTable
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	f := &fixture{
		orders:  repository.NewOrderRepository(gdb),
		plans:   repository.NewPlanRepository(gdb),
		subs:    repository.NewSubscriptionRepository(gdb),
		gateway: &fakeGateway{payURL: "https://pay.example/O"},
		actor:   &countingActor{},
	}

	month, err := vo.NewDuration(1)
	require.NoError(t, err)
	p, err := plan.NewPlan("Month", decimal.NewFromInt(10), vo.CurrencyUSDT, "R1", month)
	require.NoError(t, err)
	require.NoError(t, f.plans.Save(context.Background(), p))
	f.monthID = p.ID()

	f.methods, err = pricing.NewMethodTable([]pricing.Method{
		{Name: "TRC20", Code: "usdt.trc20", Currency: vo.CurrencyUSDT},
		{Name: "alipay", Code: "alipay", Currency: vo.CurrencyCNY},
	})
	require.NoError(t, err)

	clock := biztime.FixedClock{T: testNow}
	log := logger.NewNopLogger()
	f.create = NewCreateOrderUseCase(f.orders, f.plans, f.gateway, f.methods,
		pricing.NewConverter(fixedRate{rate: decimal.NewFromInt(7)}), clock, log)
	f.fulfill = NewFulfillOrderUseCase(f.orders, f.plans, f.subs, f.actor,
		lock.NewMemoryLocker(), db.NewTransactionManager(gdb), clock, log)
	return f
}
