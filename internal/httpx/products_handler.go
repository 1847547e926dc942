package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const productsPerPage = 10

type ProductsHandler struct {
	Repo  *catalog.Repo
	Redis *redis.Client
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx, search, page, productsPerPage)
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": ps,
		"page":     page,
		"per_page": productsPerPage,
	})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache-first; stok di cache bisa sedikit basi, source of truth tetap DB
	key := fmt.Sprintf(redisx.KeyProduct, id)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	p, err := h.Repo.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	b, _ := json.Marshal(p)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLProductCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorInfo{
			Code: "validation_failed", Message: "invalid json",
		}})
		return
	}
	if fields := catalog.ValidateCreate(in); fields != nil {
		writeValidation(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in catalog.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorInfo{
			Code: "validation_failed", Message: "invalid json",
		}})
		return
	}
	if fields := catalog.ValidateUpdate(in); fields != nil {
		writeValidation(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Update(ctx, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyProduct, id)).Err()
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyProduct, id)).Err()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
