package catalog

import "strings"

// Filter returns the products whose name or category contains query,
// case-insensitively. A blank query matches everything.
func Filter(products []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// InCategory keeps products whose category equals name, ignoring case.
func InCategory(products []Product, name string) []Product {
	name = strings.TrimSpace(name)
	if name == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, name) {
			out = append(out, p)
		}
	}
	return out
}

func FilterCategories(categories []Category, query string) []Category {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
