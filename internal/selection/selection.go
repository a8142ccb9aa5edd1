// Package selection turns heterogeneous backend entities into uniform
// {ID, Label, Raw} values for pickers.
//
// Product types, units and products arrive with different field names
// depending on the endpoint. Each lookup walks an ordered list of candidate
// fields; the order is part of the contract since changing it changes the
// labels shown for existing data.
package selection

import (
	"strings"

	"github.com/naveenspark/fridge/pkg/domain"
)

// Placeholder is the label of an entity with no usable label field.
const Placeholder = "(none)"

var (
	labelFields            = []string{"name", "displayName", "label", "typeName", "unitName", "code", "symbol", "value"}
	idFields               = []string{"id", "productId", "uuid", "code", "value", "key", "name"}
	unitValueFields        = []string{"value", "code", "symbol", "key", "id"}
	productTypeValueFields = []string{"value", "code", "type", "symbol", "key", "name"}
)

// Selection is the normalized view of one entity. ID "" means no id.
type Selection struct {
	ID    string
	Label string
	Raw   any
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool {
	return s.Raw == nil
}

// Normalize builds a Selection from a raw payload value.
func Normalize(v any) Selection {
	switch t := v.(type) {
	case nil:
		return Selection{Label: Placeholder}
	case Selection:
		return t
	case map[string]any:
		sel := Selection{Label: domain.FirstText(t, labelFields...), Raw: t}
		if sel.Label == "" {
			sel.Label = Placeholder
		}
		for _, k := range idFields {
			if id, ok := domain.Lookup(t, k); ok {
				sel.ID = domain.Text(id)
				break
			}
		}
		return sel
	}

	text := domain.Text(v)
	sel := Selection{ID: text, Label: text, Raw: v}
	if sel.Label == "" {
		sel.Label = Placeholder
	}
	return sel
}

// NormalizeAll normalizes every element of a list payload.
func NormalizeAll(items []any) []Selection {
	out := make([]Selection, 0, len(items))
	for _, it := range items {
		out = append(out, Normalize(it))
	}
	return out
}

// Equal reports whether a and b refer to the same entity.
func Equal(a, b Selection) bool {
	return a.ID != "" && a.ID == b.ID
}

// UnitValue resolves the wire value of a unit selection.
func UnitValue(s Selection) (string, bool) {
	return resolve(s, unitValueFields)
}

// ProductTypeValue resolves the wire value of a product-type selection.
func ProductTypeValue(s Selection) (string, bool) {
	return resolve(s, productTypeValueFields)
}

func resolve(s Selection, fields []string) (string, bool) {
	switch t := s.Raw.(type) {
	case nil:
		return "", false
	case string:
		return t, strings.TrimSpace(t) != ""
	case map[string]any:
		for _, k := range fields {
			v, ok := domain.Lookup(t, k)
			if !ok {
				continue
			}
			if text := domain.Text(v); strings.TrimSpace(text) != "" {
				return text, true
			}
		}
	default:
		if text := domain.Text(t); strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	if strings.TrimSpace(s.ID) != "" {
		return s.ID, true
	}
	return "", false
}
