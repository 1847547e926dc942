package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-storefront.git/internal/httpx"
	"github.com/ariefcatur/go-storefront.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore: Store minimal untuk handler test; satu produk, satu order tersimpan.
type stubStore struct {
	price  int
	stock  int
	name   string
	placed map[string]*orders.View
}

type stubTx struct {
	s    *stubStore
	used int
	view struct {
		ord   *orders.Order
		lines []orders.OrderLine
	}
}

func (s *stubStore) InTx(ctx context.Context, fn func(tx orders.PlacementTx) error) error {
	tx := &stubTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.stock -= tx.used
	if tx.view.ord != nil {
		s.placed[tx.view.ord.ID] = &orders.View{Order: *tx.view.ord}
		for _, l := range tx.view.lines {
			s.placed[tx.view.ord.ID].Lines = append(s.placed[tx.view.ord.ID].Lines, orders.LineView{
				OrderLine: l,
				Product:   orders.LineProduct{ID: l.ProductID, SKU: "SKU-1", Name: s.name},
			})
		}
	}
	return nil
}

func (t *stubTx) Reserve(ctx context.Context, productID string, qty int) (inventory.Reserved, error) {
	if productID != "p1" {
		return inventory.Reserved{}, &inventory.ProductNotFoundError{ProductID: productID}
	}
	avail := t.s.stock - t.used
	if avail < qty {
		return inventory.Reserved{}, &inventory.InsufficientStockError{
			ProductID: productID, Name: t.s.name, Requested: qty, Available: avail,
		}
	}
	t.used += qty
	return inventory.Reserved{ProductID: productID, SKU: "SKU-1", Name: t.s.name, PriceCents: t.s.price, Available: avail}, nil
}

func (t *stubTx) InsertOrder(ctx context.Context, o *orders.Order) error {
	cp := *o
	t.view.ord = &cp
	return nil
}

func (t *stubTx) InsertLines(ctx context.Context, lines []orders.OrderLine) error {
	t.view.lines = lines
	return nil
}

func (s *stubStore) ListByUser(ctx context.Context, userID string, page, perPage int) ([]orders.Order, error) {
	var out []orders.Order
	for _, v := range s.placed {
		if v.UserID == userID {
			out = append(out, v.Order)
		}
	}
	return out, nil
}

func (s *stubStore) GetOrder(ctx context.Context, orderID string) (*orders.View, error) {
	v, ok := s.placed[orderID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return v, nil
}

func newTestHandler(t *testing.T, store *stubStore) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// producer tidak di-Start: pesan cukup antri di inbox selama test
	prod := kafkax.NewProducer([]string{"localhost:9092"}, orders.TopicOrderPlaced, 64)

	r := httpx.NewRouter()
	h := &httpx.OrdersHandler{
		Service:  &orders.Service{Store: store},
		Producer: prod,
		Redis:    rdb,
		Name:     "storefront-test",
	}
	h.Register(r)
	return r, mr
}

func newStubStore() *stubStore {
	return &stubStore{price: 1000, stock: 5, name: "Kopi Gayo", placed: map[string]*orders.View{}}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderHTTP(t *testing.T) {
	store := newStubStore()
	h, mr := newTestHandler(t, store)

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view orders.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 3000, view.TotalCents)
	assert.Equal(t, orders.StatusPending, view.Status)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1000, view.Lines[0].UnitPriceCents)
	assert.Equal(t, "Kopi Gayo", view.Lines[0].Product.Name)
	assert.Equal(t, 2, store.stock)

	// status cache terisi
	s, err := mr.Get("order_status:" + view.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PENDING"}`, s)
}

func TestCreateOrderHTTPInvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t, newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderHTTPValidation(t *testing.T) {
	h, _ := newTestHandler(t, newStubStore())

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 0}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "items.0.qty")
}

func TestCreateOrderHTTPInsufficientStock(t *testing.T) {
	store := newStubStore()
	store.stock = 2
	h, _ := newTestHandler(t, store)

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 3}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error struct {
			Code      string `json:"code"`
			Product   string `json:"product"`
			Requested int    `json:"requested"`
			Available int    `json:"available"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_stock", body.Error.Code)
	assert.Equal(t, "Kopi Gayo", body.Error.Product)
	assert.Equal(t, 3, body.Error.Requested)
	assert.Equal(t, 2, body.Error.Available)
	assert.Equal(t, 2, store.stock, "stok tidak berubah")
}

func TestCreateOrderHTTPProductNotFound(t *testing.T) {
	h, _ := newTestHandler(t, newStubStore())

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "ghost", "qty": 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_not_found")
}

func TestGetOrderHTTP(t *testing.T) {
	store := newStubStore()
	h, _ := newTestHandler(t, store)

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created orders.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	got := get(h, "/orders/"+created.ID)
	require.Equal(t, http.StatusOK, got.Code)
	var view orders.View
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &view))
	assert.Equal(t, created.ID, view.ID)
	assert.Equal(t, created.TotalCents, view.TotalCents)

	missing := get(h, "/orders/nope")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "not_found")
}

func TestListOrdersHTTP(t *testing.T) {
	store := newStubStore()
	h, _ := newTestHandler(t, store)

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	list := get(h, "/orders?user_id=u1")
	require.Equal(t, http.StatusOK, list.Code)
	var body struct {
		Orders  []orders.Order `json:"orders"`
		Page    int            `json:"page"`
		PerPage int            `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &body))
	assert.Len(t, body.Orders, 1)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 10, body.PerPage)

	noUser := get(h, "/orders")
	assert.Equal(t, http.StatusUnprocessableEntity, noUser.Code)
}

func TestGetOrderStatusHTTPCacheFirst(t *testing.T) {
	store := newStubStore()
	h, mr := newTestHandler(t, store)

	rec := postJSON(t, h, "/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": "p1", "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created orders.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// cache dari createOrder
	got := get(h, "/orders/"+created.ID+"/status")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t, `{"status":"PENDING"}`, got.Body.String())

	// cache dihapus -> fallback DB lalu cache terisi lagi
	mr.Del("order_status:" + created.ID)
	got = get(h, "/orders/"+created.ID+"/status")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t, `{"status":"PENDING"}`, got.Body.String())
	_, err := mr.Get("order_status:" + created.ID)
	assert.NoError(t, err)
}
