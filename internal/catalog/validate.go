package catalog

const (
	maxNameLen = 255
	maxSKULen  = 100
)

// ValidateCreate: nil berarti valid, selain itu map field -> pesan.
// Dijalankan sebelum menyentuh DB.
func ValidateCreate(in CreateInput) map[string]string {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	} else if len(in.Name) > maxNameLen {
		fields["name"] = "too long"
	}
	if in.SKU == "" {
		fields["sku"] = "required"
	} else if len(in.SKU) > maxSKULen {
		fields["sku"] = "too long"
	}
	if in.PriceCents < 0 {
		fields["price_cents"] = "must be >= 0"
	}
	if in.Stock < 0 {
		fields["stock"] = "must be >= 0"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func ValidateUpdate(in UpdateInput) map[string]string {
	fields := map[string]string{}
	if in.Name != nil {
		if *in.Name == "" {
			fields["name"] = "required"
		} else if len(*in.Name) > maxNameLen {
			fields["name"] = "too long"
		}
	}
	if in.SKU != nil {
		if *in.SKU == "" {
			fields["sku"] = "required"
		} else if len(*in.SKU) > maxSKULen {
			fields["sku"] = "too long"
		}
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		fields["price_cents"] = "must be >= 0"
	}
	if in.Stock != nil && *in.Stock < 0 {
		fields["stock"] = "must be >= 0"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
