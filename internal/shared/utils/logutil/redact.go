// Package logutil shortens and masks values before they are logged.
package logutil

import "strings"

// signatureKeys are the notification fields yipay and epusdt sign with.
var signatureKeys = []string{"sign", "signature"}

// Prefix keeps the first n bytes of s and marks the cut with "...".
func Prefix(s string, n int) string {
	switch {
	case n <= 0:
		return "..."
	case len(s) <= n:
		return s
	default:
		return s[:n] + "..."
	}
}

// CallbackSignature returns a short prefix of a notification's signature,
// whichever field the platform puts it in.
func CallbackSignature(params map[string]string) string {
	for _, k := range signatureKeys {
		if v := params[k]; v != "" {
			return Prefix(v, 8)
		}
	}
	return ""
}

// MaskEmail turns "ops@example.com" into "o***@example.com".
func MaskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
