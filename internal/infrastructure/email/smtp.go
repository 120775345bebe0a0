package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/rolegate/rolegate/internal/shared/logger"
	"github.com/rolegate/rolegate/internal/shared/utils/logutil"
)

type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	FromAddress  string
	FromName     string
	AdminAddress string
}

// AlertGate suppresses repeated alerts for the same order.
type AlertGate interface {
	TryAcquire(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
}

const alertCooldown = 30 * time.Minute

// FailureNotifier mails the administrator when an order could not be
// fulfilled and needs a manual retry.
type FailureNotifier struct {
	config SMTPConfig
	send   func(m ...*gomail.Message) error
	gate   AlertGate
	clock  func() time.Time
	logger logger.Interface
}

func NewFailureNotifier(config SMTPConfig, log logger.Interface) *FailureNotifier {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &FailureNotifier{
		config: config,
		send:   dialer.DialAndSend,
		clock:  time.Now,
		logger: log.Named("email"),
	}
}

// SetAlertGate enables per-order alert deduplication.
func (n *FailureNotifier) SetAlertGate(gate AlertGate) {
	n.gate = gate
}

// NotifyFulfillmentFailure sends one message per order per cooldown window.
// Delivery errors are logged, never returned.
func (n *FailureNotifier) NotifyFulfillmentFailure(ctx context.Context, orderID, userID string, cause error) {
	if n.gate != nil {
		ok, err := n.gate.TryAcquire(ctx, orderID, alertCooldown)
		if err != nil {
			n.logger.Warnw("alert deduplication unavailable, sending anyway", "order_id", orderID, "error", err)
		} else if !ok {
			n.logger.Debugw("fulfillment alert suppressed", "order_id", orderID)
			return
		}
	}

	subject := fmt.Sprintf("[rolegate] order %s needs attention", orderID)
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}

	plainBody := fmt.Sprintf(`
Fulfillment failed for order %s (user %s) at %s.

Reason: %s

Retry with: rolegate order fulfill %s
`, orderID, userID, n.clock().UTC().Format(time.RFC3339), reason, orderID)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Fulfillment failed</h2>
			<p>Order <b>%s</b> for user <b>%s</b> could not be fulfilled.</p>
			<p>Reason: %s</p>
			<p>Retry with <code>rolegate order fulfill %s</code>.</p>
		</body>
		</html>
	`, html.EscapeString(orderID), html.EscapeString(userID), html.EscapeString(reason), html.EscapeString(orderID))

	if err := n.sendEmail(n.config.AdminAddress, subject, htmlBody, plainBody); err != nil {
		n.logger.Errorw("failed to send fulfillment alert", "order_id", orderID, "error", err)
		return
	}
	n.logger.Infow("fulfillment alert sent", "order_id", orderID, "to", logutil.MaskEmail(n.config.AdminAddress))
}

func (n *FailureNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.config.FromAddress, n.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := n.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
