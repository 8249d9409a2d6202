package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/nikolayk812/orders-demo/internal/domain"
)

type Cart struct {
	CartID  string `json:"cart_id"`
	OwnerID string `json:"owner_id"`
	Items   []Item `json:"items"`
	State   string `json:"state"`
}

func FromCart(cart domain.Cart) Cart {
	state := cart.State
	if state == "" {
		state = domain.CartStateOpen
	}

	return Cart{
		CartID:  cart.ID,
		OwnerID: cart.OwnerID,
		Items:   FromItems(cart.Items),
		State:   state.String(),
	}
}

func FromCarts(carts []domain.Cart) []Cart {
	result := make([]Cart, 0, len(carts))
	for _, cart := range carts {
		result = append(result, FromCart(cart))
	}
	return result
}

func EncodeCart(cart domain.Cart) ([]byte, error) {
	data, err := json.Marshal(FromCart(cart))
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// DecodeCart strictly decodes a cart document. A missing items list or state
// falls back to an empty list and the open state.
func DecodeCart(data []byte) (domain.Cart, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return domain.Cart{}, &domain.DecodeError{Field: "cart", Reason: "not an object"}
	}

	cartID, err := requiredString(fields, "cart_id", "cart")
	if err != nil {
		return domain.Cart{}, err
	}

	ownerID, err := requiredString(fields, "owner_id", "cart")
	if err != nil {
		return domain.Cart{}, err
	}

	var state string
	if raw, ok := present(fields, "state"); ok {
		if err := json.Unmarshal(raw, &state); err != nil {
			return domain.Cart{}, &domain.DecodeError{Field: "cart.state", Reason: "not a string"}
		}
	}

	items := []domain.CartItem{}
	if raw, ok := present(fields, "items"); ok {
		items, err = decodeItems(raw, "items")
		if err != nil {
			return domain.Cart{}, err
		}
	}

	return domain.Cart{
		ID:      cartID,
		OwnerID: ownerID,
		Items:   items,
		State:   domain.ParseCartState(state),
	}, nil
}

// EncodeStoredItems renders the items column document.
func EncodeStoredItems(items []domain.CartItem) ([]byte, error) {
	data, err := json.Marshal(FromItems(items))
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// DecodeStoredItems decodes the items column. A NULL column yields an empty list;
// malformed items fail with *domain.DecodeError.
func DecodeStoredItems(raw []byte) ([]domain.CartItem, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []domain.CartItem{}, nil
	}
	return decodeItems(raw, "items")
}

// DecodeRequestItems decodes a replacement item list from a request body.
// Failures are bad requests naming the offending field.
func DecodeRequestItems(body []byte) ([]domain.CartItem, error) {
	items, err := decodeItems(body, "items")
	if err != nil {
		return nil, domain.E(domain.KindBadRequest, "codec.DecodeRequestItems", err)
	}
	return items, nil
}
