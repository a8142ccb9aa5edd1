package browser

import "testing"

func TestProductURL(t *testing.T) {
	tests := []struct {
		ean  string
		want string
	}{
		{"4006381333931", "https://world.openfoodfacts.org/product/4006381333931"},
		{"96385074", "https://world.openfoodfacts.org/product/96385074"},
		{"a b/c", "https://world.openfoodfacts.org/product/a%20b%2Fc"},
	}
	for _, tc := range tests {
		if got := ProductURL(tc.ean); got != tc.want {
			t.Errorf("ProductURL(%q) = %q, want %q", tc.ean, got, tc.want)
		}
	}
}
