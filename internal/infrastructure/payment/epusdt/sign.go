package epusdt

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const signatureKey = "signature"

// Sign returns the lowercase hex MD5 of the sorted k=v pairs joined with '&'
// followed by the API token. The signature key and empty values are skipped.
func Sign(params map[string]string, token string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == signatureKey || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(token)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// FormatNumber renders a float the way the platform does when signing:
// whole numbers carry no decimal point.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// stringify converts a decoded JSON value to its signing form.
func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return FormatNumber(f), nil
	case float64:
		return FormatNumber(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
