package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, sku, name, price_cents, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List: paginated, terbaru dulu; search match nama atau sku (LIKE).
func (r *Repo) List(ctx context.Context, search string, page, perPage int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := r.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, search, perPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (*Product, error) {
	id := uuid.NewString()
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products(id, sku, name, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productCols, id, in.SKU, in.Name, in.PriceCents, in.Stock))
	if err != nil {
		return nil, mapUnique(err)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products SET
			sku         = COALESCE($2, sku),
			name        = COALESCE($3, name),
			price_cents = COALESCE($4, price_cents),
			stock       = COALESCE($5, stock),
			updated_at  = now()
		WHERE id=$1
		RETURNING `+productCols, id, in.SKU, in.Name, in.PriceCents, in.Stock))
	if err != nil {
		return nil, mapUnique(err)
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// 23505 = unique_violation (constraint sku).
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSKUTaken
	}
	return err
}
