package orders

import "time"

type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Status     Status    `json:"status"` // lihat status.go
	TotalCents int       `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderLine: snapshot historis. UnitPriceCents disalin dari produk saat
// order dibuat dan tidak pernah berubah walau harga katalog berubah.
type OrderLine struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	ProductID      string `json:"product_id"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

// LineProduct: detail produk yang direferensikan line, untuk view.
type LineProduct struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

type LineView struct {
	OrderLine
	Product LineProduct `json:"product"`
}

// View hasil placement / GET order: header + lines + detail produk.
type View struct {
	Order
	Lines []LineView `json:"lines"`
}
