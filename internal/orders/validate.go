package orders

import "fmt"

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// PlaceOrderCmd: command hasil validasi, siap dieksekusi service.
type PlaceOrderCmd struct {
	UserID string
	Items  []ItemInput
}

// ParsePlaceOrder: fungsi murni request mentah -> command atau
// *ValidationError. Tidak menyentuh DB.
func ParsePlaceOrder(userID string, items []ItemInput) (PlaceOrderCmd, error) {
	fields := map[string]string{}
	if userID == "" {
		fields["user_id"] = "required"
	}
	if len(items) == 0 {
		fields["items"] = "required, min 1 item"
	}
	for i, it := range items {
		if it.ProductID == "" {
			fields[fmt.Sprintf("items.%d.product_id", i)] = "required"
		}
		if it.Qty < 1 {
			fields[fmt.Sprintf("items.%d.qty", i)] = "must be at least 1"
		}
	}
	if len(fields) > 0 {
		return PlaceOrderCmd{}, &ValidationError{Fields: fields}
	}
	return PlaceOrderCmd{UserID: userID, Items: items}, nil
}
