package constants

const (
	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyRequestID = "request_id"
	ContextKeyAdmin     = "admin"

	// Callback results reported to metrics by the webhook listener.
	CallbackUnsupported = "unsupported"
	CallbackMalformed   = "malformed"
	CallbackBadSign     = "bad_signature"
	CallbackNotPaid     = "not_paid"
	CallbackQueued      = "queued"
	CallbackQueueError  = "queue_error"
)
