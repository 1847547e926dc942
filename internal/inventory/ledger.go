// Package inventory adalah satu-satunya jalur mutasi stok selama
// pembuatan order: lock baris produk, cek, lalu kurangi — semua di dalam
// transaksi milik caller supaya rollback mengembalikan stok dengan sendirinya.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError: kondisi bisnis, bukan fault sistem.
// Membawa nama produk + jumlah supaya pesan ke user presisi.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// Reserved: snapshot produk saat baris di-lock. PriceCents adalah harga
// yang nanti disalin ke order line, Available stok sebelum dikurangi.
type Reserved struct {
	ProductID  string
	SKU        string
	Name       string
	PriceCents int
	Available  int
}

// Reserve: SELECT FOR UPDATE -> cek stok -> decrement, atomik dalam tx.
// Dua placement konkuren ke produk yang sama akan terserialisasi di lock
// baris; yang kedua melihat hasil decrement yang pertama.
func Reserve(ctx context.Context, tx pgx.Tx, productID string, qty int) (Reserved, error) {
	var p Reserved
	err := tx.QueryRow(ctx, `
		SELECT id, sku, name, price_cents, stock FROM products
		WHERE id=$1 FOR UPDATE`, productID).
		Scan(&p.ProductID, &p.SKU, &p.Name, &p.PriceCents, &p.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return p, err
	}

	if p.Available < qty {
		return p, &InsufficientStockError{
			ProductID: p.ProductID, Name: p.Name,
			Requested: qty, Available: p.Available,
		}
	}

	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id=$1 AND stock >= $2`, productID, qty)
	if err != nil {
		return p, err
	}
	if ct.RowsAffected() != 1 {
		// tidak seharusnya terjadi di bawah FOR UPDATE; anggap stok kurang
		return p, &InsufficientStockError{
			ProductID: p.ProductID, Name: p.Name,
			Requested: qty, Available: p.Available,
		}
	}
	return p, nil
}

// Release: kompensasi kebalikan Reserve, untuk reservasi yang sudah
// ter-commit (mis. order dibatalkan). Rollback transaksi tetap jadi jalur
// utama untuk kegagalan di tengah placement.
func Release(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id=$1`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &ProductNotFoundError{ProductID: productID}
	}
	return nil
}
