// Package discord applies roles through the Discord REST API.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rolegate/rolegate/internal/application/entitlement"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	defaultBaseURL  = "https://discord.com/api/v10"
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 64 << 10
	auditLogReason  = "rolegate subscription"

	codeUnknownMember = 10007
	codeUnknownRole   = 10011
	codeUnknownUser   = 10013
)

type Config struct {
	Token      string
	GuildID    string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements entitlement.Actor for one guild.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Interface

	initialInterval time.Duration
	maxInterval     time.Duration
}

var _ entitlement.Actor = (*Client)(nil)

func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		cfg:             cfg,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		logger:          log.Named("discord"),
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
}

func (c *Client) Grant(ctx context.Context, userID, roleID string) error {
	err := c.memberRole(ctx, http.MethodPut, userID, roleID)
	if err == nil {
		c.logger.Infow("role granted", "user_id", userID, "role_id", roleID)
		return nil
	}
	return c.actorErr("grant", userID, roleID, err)
}

func (c *Client) Revoke(ctx context.Context, userID, roleID string) error {
	err := c.memberRole(ctx, http.MethodDelete, userID, roleID)
	if err == nil {
		c.logger.Infow("role revoked", "user_id", userID, "role_id", roleID)
		return nil
	}
	if apiErr, ok := err.(*apiError); ok && apiErr.isUnknownEntity() {
		c.logger.Infow("role already absent, treating revoke as done",
			"user_id", userID,
			"role_id", roleID,
			"discord_code", apiErr.Code,
		)
		return nil
	}
	return c.actorErr("revoke", userID, roleID, err)
}

func (c *Client) actorErr(op, userID, roleID string, err error) error {
	ae := &apperrors.ActorError{Op: op, UserID: userID, RoleID: roleID, Err: err}
	if apiErr, ok := err.(*apiError); ok && apiErr.isUnknownEntity() {
		ae.NotFound = true
	}
	return ae
}

// apiError is a non-success response from the REST API.
type apiError struct {
	Status     int     `json:"-"`
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord api status %d: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("discord api status %d", e.Status)
}

func (e *apiError) isUnknownEntity() bool {
	if e.Status != http.StatusNotFound {
		return false
	}
	switch e.Code {
	case codeUnknownMember, codeUnknownRole, codeUnknownUser:
		return true
	}
	return false
}

func (e *apiError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// memberRole issues the request, retrying rate limits and server errors with
// exponential backoff. A 429 waits at least as long as the server asks.
func (c *Client) memberRole(ctx context.Context, method, userID, roleID string) error {
	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s", c.cfg.BaseURL,
		url.PathEscape(c.cfg.GuildID), url.PathEscape(userID), url.PathEscape(roleID))

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.initialInterval
	expBackoff.MaxInterval = c.maxInterval
	expBackoff.Reset()

	for attempt := 0; ; attempt++ {
		err := c.send(ctx, method, endpoint)
		if err == nil {
			return nil
		}

		apiErr, ok := err.(*apiError)
		if ok && !apiErr.retryable() {
			return err
		}
		if attempt >= c.cfg.MaxRetries {
			return err
		}

		delay := expBackoff.NextBackOff()
		if delay == backoff.Stop {
			return err
		}
		if ok && apiErr.RetryAfter > 0 {
			if wait := time.Duration(apiErr.RetryAfter * float64(time.Second)); wait > delay {
				delay = wait
			}
		}

		c.logger.Warnw("discord request failed, retrying",
			"method", method,
			"user_id", userID,
			"role_id", roleID,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) send(ctx context.Context, method, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.cfg.Token)
	req.Header.Set("X-Audit-Log-Reason", auditLogReason)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &apiError{Status: resp.StatusCode}
	_ = json.Unmarshal(body, apiErr)
	if apiErr.RetryAfter == 0 {
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil {
			apiErr.RetryAfter = secs
		}
	}
	return apiErr
}
