package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrOrderNotFound is returned when an order id has no stored order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPlanNotFound is returned when a plan cannot be resolved, including
	// when an order references a plan that has since been deleted.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrSubscriptionNotFound is returned when a subscription id is unknown.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrUnsupportedOperation is returned by gateways lacking an optional call.
	ErrUnsupportedOperation = errors.New("operation not supported by payment platform")
)

// GatewayError wraps a failed payment gateway interaction: a transport error,
// a non-2xx response, a business-level rejection or a local precondition
// such as the amount ceiling.
type GatewayError struct {
	Platform   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s gateway %s failed", e.Platform, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// SignatureError reports a callback whose signature did not verify.
type SignatureError struct {
	Platform string
	Reason   string
}

func (e *SignatureError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s callback signature invalid: %s", e.Platform, e.Reason)
	}
	return fmt.Sprintf("%s callback signature invalid", e.Platform)
}

// ActorError reports a failed role grant or revoke on the chat platform.
// NotFound is set when the member or role does not exist.
type ActorError struct {
	Op       string
	UserID   string
	RoleID   string
	NotFound bool
	Err      error
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("role %s failed for user %s role %s: %v", e.Op, e.UserID, e.RoleID, e.Err)
}

func (e *ActorError) Unwrap() error { return e.Err }

func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

func IsSignatureError(err error) bool {
	var se *SignatureError
	return errors.As(err, &se)
}

func IsActorError(err error) bool {
	var ae *ActorError
	return errors.As(err, &ae)
}

// ToAppError maps lifecycle failures onto AppErrors for HTTP responses.
// Errors that are already AppErrors pass through unchanged.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return NewNotFoundError("order not found")
	case errors.Is(err, ErrPlanNotFound):
		return NewNotFoundError("plan not found")
	case errors.Is(err, ErrSubscriptionNotFound):
		return NewNotFoundError("subscription not found")
	case errors.Is(err, ErrUnsupportedOperation):
		return newAppError(ErrorTypeValidation, http.StatusBadRequest, err.Error(), nil)
	case IsSignatureError(err):
		return NewForbiddenError("invalid signature")
	case IsGatewayError(err):
		return NewBadGatewayError("payment gateway error", err.Error())
	case IsActorError(err):
		return NewBadGatewayError("role update failed", err.Error())
	}
	return NewInternalError("internal server error")
}
