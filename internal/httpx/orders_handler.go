package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

const ordersPerPage = 10

type CreateOrderReq struct {
	UserID string             `json:"user_id"`
	Items  []orders.ItemInput `json:"items"`
}

type OrdersHandler struct {
	Service  *orders.Service
	Producer *kafkax.Producer
	Redis    *redis.Client
	Name     string // service name untuk field producer di event
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorInfo{
			Code: "validation_failed", Message: "invalid json",
		}})
		return
	}

	// validasi murni sebelum transaksi dibuka
	cmd, err := orders.ParsePlaceOrder(req.UserID, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.Service.PlaceOrder(ctx, cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	// Cache status (PENDING) agar GET status cepat
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, view.ID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"PENDING"}`, redisx.TTLStatusCache).Err()

	h.publishPlaced(r, view)

	writeJSON(w, http.StatusCreated, view)
}

func (h *OrdersHandler) publishPlaced(r *http.Request, view *orders.View) {
	snaps := make([]orders.LineSnapshot, 0, len(view.Lines))
	for _, l := range view.Lines {
		snaps = append(snaps, orders.LineSnapshot{
			ProductID: l.ProductID, Qty: l.Qty, UnitPriceCents: l.UnitPriceCents,
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: view.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID: view.ID, UserID: view.UserID,
			TotalCents: view.TotalCents, Lines: snaps,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(view.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.ListOrders(ctx, userID, page, ordersPerPage)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":   list,
		"page":     page,
		"per_page": ordersPerPage,
	})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	view, err := h.Service.GetOrder(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	view, err := h.Service.GetOrder(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	b, _ := json.Marshal(map[string]any{"status": view.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
