package domain

// Fridge is an inventory container the user owns or shares.
type Fridge struct {
	ID   string
	Name string
	Role string // role of the current user, "owner" or "member"
	Raw  any
}

// FridgeFrom builds a Fridge view from a raw /api/fridges entry.
func FridgeFrom(v any) Fridge {
	f := Fridge{
		ID:   FirstText(v, "id"),
		Name: FirstText(v, "name"),
		Role: FirstText(v, "roleOfCurrentUser", "role"),
		Raw:  v,
	}
	if f.Name == "" {
		f.Name = "(unnamed)"
	}
	if f.Role == "" {
		f.Role = "unknown"
	}
	return f
}

// FridgeItem is one product instance stored in a fridge.
type FridgeItem struct {
	ID         string
	Name       string
	Amount     string
	Unit       any // raw unit value, rendered through a selection label
	BestBefore string
	OpenDate   string
	Raw        any
}

// FridgeItemFrom builds a FridgeItem view from a raw /api/fridge-items entry.
func FridgeItemFrom(v any) FridgeItem {
	it := FridgeItem{
		ID:         FirstText(v, "id"),
		Name:       ItemName(v),
		BestBefore: FirstText(v, "bestBeforeDate"),
		OpenDate:   FirstText(v, "openDate"),
		Raw:        v,
	}
	amount, _ := Lookup(v, "amount")
	it.Amount = FormatAmount(amount)
	it.Unit, _ = Lookup(v, "unit")
	return it
}

// ItemName resolves the display name: customName, name, product.name,
// productName.
func ItemName(v any) string {
	if s := FirstText(v, "customName", "name"); s != "" {
		return s
	}
	if p, ok := Lookup(v, "product"); ok {
		if s := FirstText(p, "name"); s != "" {
			return s
		}
	}
	if s := FirstText(v, "productName"); s != "" {
		return s
	}
	return "(unnamed)"
}

// Product is a catalog entry.
type Product struct {
	ID   string
	Name string
	EAN  string
	Type any // raw product type, rendered through a selection label
	Raw  any
}

func ProductFrom(v any) Product {
	p := Product{
		ID:   FirstText(v, "id", "productId", "uuid"),
		Name: FirstText(v, "name"),
		EAN:  FirstText(v, "ean"),
		Raw:  v,
	}
	p.Type, _ = Lookup(v, "productType")
	if p.Type == nil {
		p.Type, _ = Lookup(v, "type")
	}
	if p.Name == "" {
		p.Name = "(unnamed)"
	}
	return p
}

// ProductUnit returns the product's default unit, trying defaultUnit, unit
// and productUnit in that order.
func ProductUnit(v any) (any, bool) {
	for _, k := range []string{"defaultUnit", "unit", "productUnit"} {
		if u, ok := Lookup(v, k); ok {
			if s, isStr := u.(string); isStr && s == "" {
				continue
			}
			return u, true
		}
	}
	return nil, false
}
