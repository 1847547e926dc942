package orders

const (
	TopicOrderPlaced = "storefront.order.placed"
	TopicOrderStatus = "storefront.order.status"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
