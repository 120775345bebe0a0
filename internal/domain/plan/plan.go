package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/shared/biztime"
)

const maxNameLength = 64

// Plan is a purchasable product: a price for holding a role for a duration.
// Plans are identified to users by their unique name.
type Plan struct {
	id        uint
	name      string
	price     decimal.Decimal
	currency  vo.Currency
	roleID    string
	duration  vo.Duration
	createdAt time.Time
	updatedAt time.Time
}

func NewPlan(name string, price decimal.Decimal, currency vo.Currency, roleID string, duration vo.Duration) (*Plan, error) {
	p := &Plan{}
	if err := p.apply(name, price, currency, roleID, duration); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	p.createdAt = now
	p.updatedAt = now
	return p, nil
}

// ReconstructPlan rebuilds a Plan loaded from storage without validation.
func ReconstructPlan(id uint, name string, price decimal.Decimal, currency vo.Currency, roleID string,
	duration vo.Duration, createdAt, updatedAt time.Time) *Plan {
	return &Plan{
		id:        id,
		name:      name,
		price:     price,
		currency:  currency,
		roleID:    roleID,
		duration:  duration,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Update replaces the mutable fields. The name is the identity and stays.
func (p *Plan) Update(price decimal.Decimal, currency vo.Currency, roleID string, duration vo.Duration) error {
	if err := p.apply(p.name, price, currency, roleID, duration); err != nil {
		return err
	}
	p.updatedAt = biztime.NowUTC()
	return nil
}

func (p *Plan) apply(name string, price decimal.Decimal, currency vo.Currency, roleID string, duration vo.Duration) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("plan name too long (max %d characters)", maxNameLength)
	}
	if !price.IsPositive() {
		return fmt.Errorf("plan price must be positive")
	}
	if !currency.IsValid() {
		return fmt.Errorf("invalid currency: %s", currency)
	}
	if strings.TrimSpace(roleID) == "" {
		return fmt.Errorf("role id is required")
	}
	if duration.Months() == 0 {
		return fmt.Errorf("plan duration is required")
	}

	p.name = name
	p.price = price.Round(2)
	p.currency = currency
	p.roleID = strings.TrimSpace(roleID)
	p.duration = duration
	return nil
}

// DisplayPrice renders the price with its duration suffix, e.g. "10.00 USDT/month".
func (p *Plan) DisplayPrice() string {
	return fmt.Sprintf("%s %s%s", p.price.StringFixed(2), p.currency, p.duration.Label())
}

func (p *Plan) SetID(id uint) {
	p.id = id
}

func (p *Plan) ID() uint {
	return p.id
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) Price() decimal.Decimal {
	return p.price
}

func (p *Plan) Currency() vo.Currency {
	return p.currency
}

func (p *Plan) RoleID() string {
	return p.roleID
}

func (p *Plan) Duration() vo.Duration {
	return p.duration
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}
