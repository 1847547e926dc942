package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo: implementasi Store di atas Postgres. Lock baris (FOR UPDATE)
// di ledger menjamin dua placement konkuren terserialisasi per produk.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) InTx(ctx context.Context, fn func(tx PlacementTx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapTxErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&placementTx{tx: tx}); err != nil {
		return mapTxErr(err)
	}
	return mapTxErr(tx.Commit(ctx))
}

type placementTx struct{ tx pgx.Tx }

func (t *placementTx) Reserve(ctx context.Context, productID string, qty int) (inventory.Reserved, error) {
	return inventory.Reserve(ctx, t.tx, productID, qty)
}

func (t *placementTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		o.ID, o.UserID, string(o.Status), o.TotalCents, o.CreatedAt)
	return err
}

func (t *placementTx) InsertLines(ctx context.Context, lines []OrderLine) error {
	for i, l := range lines {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_lines(id, order_id, product_id, pos, qty, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.OrderID, l.ProductID, i, l.Qty, l.UnitPriceCents); err != nil {
			return err
		}
	}
	return nil
}

// 40001 = serialization_failure, 40P01 = deadlock_detected.
// Keduanya transien; service boleh retry.
func mapTxErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %v", ErrTxConflict, err)
	}
	return err
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, perPage int) ([]Order, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetOrder: read-model eksplisit — header + lines + detail produk
// dalam satu struktur immutable. Tidak pernah menyentuh stok.
func (r *Repo) GetOrder(ctx context.Context, orderID string) (*View, error) {
	var v View
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&v.ID, &v.UserID, &v.Status, &v.TotalCents, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, l.qty, l.unit_price_cents,
		       p.sku, p.name
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id=$1
		ORDER BY l.pos`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var lv LineView
		if err := rows.Scan(&lv.OrderLine.ID, &lv.OrderID, &lv.ProductID, &lv.Qty,
			&lv.UnitPriceCents, &lv.Product.SKU, &lv.Product.Name); err != nil {
			return nil, err
		}
		lv.Product.ID = lv.ProductID
		v.Lines = append(v.Lines, lv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateStatus: transisi dijaga tabel di status.go, header di-lock dulu.
// Transisi ke CANCELLED dari PENDING/PAID mengembalikan stok line-nya
// (kompensasi ledger) dalam transaksi yang sama.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) (Status, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", mapTxErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", mapTxErr(err)
	}
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if to == StatusCancelled {
		if err := r.restock(ctx, tx, orderID); err != nil {
			return from, mapTxErr(err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`,
		orderID, string(to)); err != nil {
		return from, mapTxErr(err)
	}
	return to, mapTxErr(tx.Commit(ctx))
}

func (r *Repo) restock(ctx context.Context, tx pgx.Tx, orderID string) error {
	rows, err := tx.Query(ctx, `SELECT product_id, qty FROM order_lines WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type rec struct {
		pid string
		qty int
	}
	var recs []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.pid, &x.qty); err != nil {
			return err
		}
		recs = append(recs, x)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, x := range recs {
		if err := inventory.Release(ctx, tx, x.pid, x.qty); err != nil {
			return err
		}
	}
	return nil
}
