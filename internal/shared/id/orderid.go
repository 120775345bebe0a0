package id

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// MaxOrderIDLength is the longest out_trade_no both gateways accept.
	MaxOrderIDLength = 32

	orderIDPrefix       = "O"
	orderIDUserTail     = 10
	orderIDRandomLength = 6
)

// NewOrderID builds "O<unix>_<user tail>_<random>". The user tail is the last
// ten characters of userID so the whole id stays within MaxOrderIDLength for
// any user id and any 10 or 11 digit timestamp.
func NewOrderID(userID string, now time.Time) (string, error) {
	suffix, err := Generate(orderIDRandomLength)
	if err != nil {
		return "", err
	}
	tail := userID
	if len(tail) > orderIDUserTail {
		tail = tail[len(tail)-orderIDUserTail:]
	}
	orderID := fmt.Sprintf("%s%s_%s_%s", orderIDPrefix, strconv.FormatInt(now.Unix(), 10), tail, suffix)
	if len(orderID) > MaxOrderIDLength {
		return "", fmt.Errorf("order id %q exceeds %d characters", orderID, MaxOrderIDLength)
	}
	return orderID, nil
}
