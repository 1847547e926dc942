package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Cache detail produk: product:{product_id} -> JSON produk.
	// Di-invalidate saat update/delete lewat katalog.
	KeyProduct = "product:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache  = 5 * time.Minute
	TTLProductCache = 10 * time.Minute
	TTLDedup        = 48 * time.Hour
)
