package domain

import (
	"github.com/shopspring/decimal"
	"strings"
)

type CartState string

const (
	CartStateOpen CartState = "open"
	CartStatePaid CartState = "paid"
)

// ParseCartState trims a stored or requested state. An empty state reads as open.
// Letter case is kept as written; states compare case-insensitively.
func ParseCartState(s string) CartState {
	s = strings.TrimSpace(s)
	if s == "" {
		return CartStateOpen
	}
	return CartState(s)
}

func (s CartState) String() string {
	return string(s)
}

// Is reports whether s and other name the same state, ignoring letter case.
func (s CartState) Is(other CartState) bool {
	return strings.EqualFold(string(s), string(other))
}

func (s CartState) IsPaid() bool {
	return s.Is(CartStatePaid)
}

// Paid returns the paid state spelled in the letter case of s: "OPEN" checks out as "PAID".
func (s CartState) Paid() CartState {
	str := string(s)
	if str != strings.ToLower(str) && str == strings.ToUpper(str) {
		return CartState(strings.ToUpper(string(CartStatePaid)))
	}
	return CartStatePaid
}

type Cart struct {
	ID      string
	OwnerID string
	Items   []CartItem
	State   CartState
}

type CartItem struct {
	ItemID      string
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int64
}

// Caller is the authenticated principal of a request.
type Caller struct {
	ID      string
	IsAdmin bool
}
