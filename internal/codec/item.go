package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"github.com/shopspring/decimal"
	"strconv"
	"strings"
)

// Item is the JSON shape of a cart item, shared by request bodies, responses and the
// stored items document. Price is always written as a quoted decimal.
type Item struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

func FromItem(item domain.CartItem) Item {
	return Item{
		ItemID:      item.ItemID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
	}
}

func FromItems(items []domain.CartItem) []Item {
	result := make([]Item, 0, len(items))
	for _, item := range items {
		result = append(result, FromItem(item))
	}
	return result
}

func decodeItems(raw []byte, path string) ([]domain.CartItem, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, &domain.DecodeError{Field: path, Reason: "not an array of objects"}
	}

	items := make([]domain.CartItem, 0, len(objects))
	for i, fields := range objects {
		item, err := decodeItem(fields, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func decodeItem(fields map[string]json.RawMessage, path string) (domain.CartItem, error) {
	if fields == nil {
		return domain.CartItem{}, &domain.DecodeError{Field: path, Reason: "item is null"}
	}

	itemID, err := requiredString(fields, "item_id", path)
	if err != nil {
		return domain.CartItem{}, err
	}

	name, err := requiredString(fields, "name", path)
	if err != nil {
		return domain.CartItem{}, err
	}

	description, err := optionalString(fields, "description", path)
	if err != nil {
		return domain.CartItem{}, err
	}

	price, err := requiredPrice(fields, path)
	if err != nil {
		return domain.CartItem{}, err
	}

	quantity, err := requiredQuantity(fields, path)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ItemID:      itemID,
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
	}, nil
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func requiredString(fields map[string]json.RawMessage, key, path string) (string, error) {
	field := path + "." + key

	raw, ok := present(fields, key)
	if !ok {
		return "", &domain.DecodeError{Field: field, Reason: "missing"}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &domain.DecodeError{Field: field, Reason: "not a string"}
	}
	if strings.TrimSpace(s) == "" {
		return "", &domain.DecodeError{Field: field, Reason: "empty"}
	}

	return s, nil
}

func optionalString(fields map[string]json.RawMessage, key, path string) (*string, error) {
	raw, ok := present(fields, key)
	if !ok {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &domain.DecodeError{Field: path + "." + key, Reason: "not a string"}
	}

	return &s, nil
}

func requiredPrice(fields map[string]json.RawMessage, path string) (decimal.Decimal, error) {
	field := path + ".price"

	raw, ok := present(fields, "price")
	if !ok {
		return decimal.Decimal{}, &domain.DecodeError{Field: field, Reason: "missing"}
	}

	var price decimal.Decimal
	if err := price.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, &domain.DecodeError{Field: field, Reason: "not a decimal"}
	}
	if price.IsNegative() {
		return decimal.Decimal{}, &domain.DecodeError{Field: field, Reason: "negative"}
	}

	return price, nil
}

// requiredQuantity accepts a JSON integer or a numeric string such as "80".
func requiredQuantity(fields map[string]json.RawMessage, path string) (int64, error) {
	field := path + ".quantity"

	raw, ok := present(fields, "quantity")
	if !ok {
		return 0, &domain.DecodeError{Field: field, Reason: "missing"}
	}

	text := string(bytes.TrimSpace(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &domain.DecodeError{Field: field, Reason: "not an integer"}
		}
		text = strings.TrimSpace(s)
	}

	quantity, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &domain.DecodeError{Field: field, Reason: "not an integer"}
	}
	if quantity < 0 {
		return 0, &domain.DecodeError{Field: field, Reason: "negative"}
	}

	return quantity, nil
}
