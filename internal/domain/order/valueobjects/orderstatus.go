package valueobjects

// OrderStatus has a single transition: pending to paid.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid
}

func (s OrderStatus) IsPending() bool {
	return s == OrderStatusPending
}

func (s OrderStatus) String() string {
	return string(s)
}
