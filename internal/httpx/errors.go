package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/inventory"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
)

type errorInfo struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	Product   string            `json:"product,omitempty"`
	Requested int               `json:"requested,omitempty"`
	Available int               `json:"available,omitempty"`
}

type errorBody struct {
	Error errorInfo `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorInfo{
		Code: "validation_failed", Message: "invalid request", Fields: fields,
	}})
}

// writeError: map taxonomy error -> payload + status code.
// Tiap kondisi tetap machine-checkable di boundary, tidak ada yang
// di-downgrade jadi 500 generik kecuali fault sistem beneran.
func writeError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	if errors.As(err, &ve) {
		writeValidation(w, ve.Fields)
		return
	}

	var nf *inventory.ProductNotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorInfo{
			Code: "product_not_found", Message: nf.Error(), ProductID: nf.ProductID,
		}})
		return
	}

	var is *inventory.InsufficientStockError
	if errors.As(err, &is) {
		writeJSON(w, http.StatusConflict, errorBody{Error: errorInfo{
			Code: "insufficient_stock", Message: is.Error(),
			ProductID: is.ProductID, Product: is.Name,
			Requested: is.Requested, Available: is.Available,
		}})
		return
	}

	var ce *orders.ConflictError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusConflict, errorBody{Error: errorInfo{
			Code: "conflict", Message: "please retry",
		}})
		return
	}

	if errors.Is(err, orders.ErrOrderNotFound) || errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorInfo{
			Code: "not_found", Message: err.Error(),
		}})
		return
	}

	if errors.Is(err, catalog.ErrSKUTaken) {
		writeValidation(w, map[string]string{"sku": "already taken"})
		return
	}

	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorInfo{
		Code: "internal", Message: "internal error",
	}})
}
