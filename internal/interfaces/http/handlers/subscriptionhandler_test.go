package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/application/subscription/usecases"
	planvo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/domain/subscription"
	"github.com/rolegate/rolegate/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

type mockGrantUC struct {
	got    usecases.GrantSubscriptionCommand
	result *subscription.Subscription
	err    error
}

func (m *mockGrantUC) Execute(_ context.Context, cmd usecases.GrantSubscriptionCommand) (*subscription.Subscription, error) {
	m.got = cmd
	return m.result, m.err
}

func TestSubscriptionHandler_Grant(t *testing.T) {
	sub, err := subscription.NewSubscription("42", "111", 0, "", planvo.Forever(), time.Unix(1700000000, 0))
	require.NoError(t, err)

	uc := &mockGrantUC{result: sub}
	h := NewSubscriptionHandler(uc, logger.NewNopLogger())
	c, w := testutil.NewTestContext(http.MethodPost, "/api/subscriptions", map[string]any{
		"user_id": "42", "role_id": "111", "duration_months": -1,
	})

	h.GrantSubscription(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, usecases.GrantSubscriptionCommand{UserID: "42", RoleID: "111", DurationMonths: -1}, uc.got)
	assert.Contains(t, w.Body.String(), `"forever":true`)
	assert.Contains(t, w.Body.String(), `"expire_date":-1`)
}

func TestSubscriptionHandler_GrantErrors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		err  error
		want int
	}{
		{name: "non numeric user", body: map[string]any{"user_id": "bob", "role_id": "111", "duration_months": 1}, want: http.StatusBadRequest},
		{name: "missing duration", body: map[string]any{"user_id": "42", "role_id": "111"}, want: http.StatusBadRequest},
		{
			name: "actor failure",
			body: map[string]any{"user_id": "42", "role_id": "111", "duration_months": 1},
			err:  &apperrors.ActorError{Op: "grant", UserID: "42", RoleID: "111", NotFound: true, Err: errors.New("unknown member")},
			want: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSubscriptionHandler(&mockGrantUC{err: tt.err}, logger.NewNopLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/api/subscriptions", tt.body)

			h.GrantSubscription(c)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
