package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrSKUTaken = errors.New("sku already taken")
)

type Product struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateInput struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// UpdateInput: field nil = tidak diubah (partial update).
type UpdateInput struct {
	SKU        *string `json:"sku"`
	Name       *string `json:"name"`
	PriceCents *int    `json:"price_cents"`
	Stock      *int    `json:"stock"`
}
