package orders

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/inventory"
	"github.com/google/uuid"
)

// PlacementTx: operasi yang tersedia di dalam satu unit of work placement.
// Implementasi pgx ada di repo.go; fake in-memory ada di test.
type PlacementTx interface {
	// Reserve lock produk, cek stok, lalu decrement. Error bisnis:
	// *inventory.ProductNotFoundError / *inventory.InsufficientStockError.
	Reserve(ctx context.Context, productID string, qty int) (inventory.Reserved, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertLines(ctx context.Context, lines []OrderLine) error
}

type Store interface {
	// InTx menjalankan fn dalam satu transaksi: commit kalau nil,
	// rollback total kalau error. Kontensi transien dibungkus ErrTxConflict.
	InTx(ctx context.Context, fn func(tx PlacementTx) error) error

	ListByUser(ctx context.Context, userID string, page, perPage int) ([]Order, error)
	GetOrder(ctx context.Context, orderID string) (*View, error)
}

const (
	placeAttempts   = 3
	conflictBackoff = 150 * time.Millisecond
)

type Service struct {
	Store Store
}

// PlaceOrder: validasi -> satu unit of work atomik -> View.
// Semua item di-reserve berurutan sesuai request; kegagalan pertama
// (stok kurang / produk hilang / fault storage) membatalkan seluruhnya,
// tidak ada decrement parsial yang selamat.
func (s *Service) PlaceOrder(ctx context.Context, cmd PlaceOrderCmd) (*View, error) {
	if _, err := ParsePlaceOrder(cmd.UserID, cmd.Items); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= placeAttempts; attempt++ {
		view, err := s.placeOnce(ctx, cmd)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrTxConflict) {
			return nil, err
		}
		if attempt < placeAttempts {
			time.Sleep(conflictBackoff)
		}
	}
	return nil, &ConflictError{Attempts: placeAttempts}
}

func (s *Service) placeOnce(ctx context.Context, cmd PlaceOrderCmd) (*View, error) {
	now := time.Now().UTC()
	ord := Order{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	lines := make([]LineView, 0, len(cmd.Items))

	err := s.Store.InTx(ctx, func(tx PlacementTx) error {
		total := 0
		for _, it := range cmd.Items {
			// Dua line untuk produk yang sama: Reserve kedua melihat
			// stok hasil decrement pertama (cek kumulatif).
			p, err := tx.Reserve(ctx, it.ProductID, it.Qty)
			if err != nil {
				return err
			}
			total += p.PriceCents * it.Qty
			lines = append(lines, LineView{
				OrderLine: OrderLine{
					ID:             uuid.NewString(),
					OrderID:        ord.ID,
					ProductID:      p.ProductID,
					Qty:            it.Qty,
					UnitPriceCents: p.PriceCents,
				},
				Product: LineProduct{ID: p.ProductID, SKU: p.SKU, Name: p.Name},
			})
		}
		ord.TotalCents = total

		if err := tx.InsertOrder(ctx, &ord); err != nil {
			return err
		}
		raw := make([]OrderLine, len(lines))
		for i := range lines {
			raw[i] = lines[i].OrderLine
		}
		return tx.InsertLines(ctx, raw)
	})
	if err != nil {
		return nil, err
	}
	return &View{Order: ord, Lines: lines}, nil
}

// ListOrders: milik satu user, terbaru dulu, page 1-based.
func (s *Service) ListOrders(ctx context.Context, userID string, page, perPage int) ([]Order, error) {
	if userID == "" {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "required"}}
	}
	if page < 1 {
		page = 1
	}
	return s.Store.ListByUser(ctx, userID, page, perPage)
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*View, error) {
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	return s.Store.GetOrder(ctx, orderID)
}
