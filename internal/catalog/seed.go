package catalog

import "github.com/shopspring/decimal"

func placeholder(bg, text string) string {
	return "https://placehold.co/400x400/" + bg + "/ffffff?text=" + text
}

// Seed returns the storefront's mock products in id order.
func Seed() []Product {
	p := func(id int, name string, price int64, bg, text, category string, inStock bool, rating float64, reviews int) Product {
		return Product{
			ID:       id,
			Name:     name,
			Price:    decimal.NewFromInt(price),
			Image:    placeholder(bg, text),
			Category: category,
			InStock:  inStock,
			Rating:   rating,
			Reviews:  reviews,
		}
	}

	return []Product{
		p(1, "Chronos Elite", 249, "1e293b", "Watch", "Electronics", true, 4.5, 120),
		p(2, "Nova Runner", 189, "0f172a", "Shoes", "Fashion", true, 4.8, 89),
		p(3, "AirBuds Pro", 299, "1e3a8a", "EarBuds", "Electronics", true, 4.7, 234),
		p(4, "Studio Beats", 159, "111827", "Headphones", "Electronics", true, 4.6, 156),
		p(5, "BoomBox Mini", 99, "059669", "Speaker", "Electronics", true, 4.4, 67),
		p(6, "Leather Vault", 79, "7c2d12", "Wallet", "Fashion", true, 4.3, 45),
		p(7, "OLED Vision", 1299, "0f172a", "TV", "Electronics", true, 4.9, 312),
		p(8, "Cozy Hoodie", 59, "374151", "Hoodie", "Fashion", true, 4.5, 178),
		p(9, "Arctic Puffer", 219, "1e40af", "Jacket", "Fashion", true, 4.6, 92),
		p(10, "DSLR Pro", 1199, "1f2937", "Camera", "Electronics", false, 4.8, 145),
		p(11, "Gaming Mouse", 89, "7c3aed", "Mouse", "Electronics", true, 4.7, 203),
		p(12, "Eco Yoga Mat", 39, "6b21a8", "Yoga", "Sports", true, 4.4, 56),
	}
}

func Categories() []Category {
	return []Category{
		{ID: 1, Name: "Electronics", Icon: "laptop-outline", Image: placeholder("1e3a8a", "Electronics"),
			SubCategories: []string{"Phones", "Laptops", "Headphones", "Cameras"}},
		{ID: 2, Name: "Fashion", Icon: "shirt-outline", Image: placeholder("7c3aed", "Fashion"),
			SubCategories: []string{"Men", "Women", "Kids", "Accessories"}},
		{ID: 3, Name: "Home & Kitchen", Icon: "home-outline", Image: placeholder("059669", "Home"),
			SubCategories: []string{"Furniture", "Appliances", "Decor", "Cookware"}},
		{ID: 4, Name: "Beauty", Icon: "sparkles-outline", Image: placeholder("a78bfa", "Beauty"),
			SubCategories: []string{"Skincare", "Makeup", "Haircare", "Fragrances"}},
		{ID: 5, Name: "Sports", Icon: "fitness-outline", Image: placeholder("ef4444", "Sports"),
			SubCategories: []string{"Gym", "Outdoor", "Cycling", "Team Sports"}},
		{ID: 6, Name: "Books", Icon: "book-outline", Image: placeholder("6b7280", "Books"),
			SubCategories: []string{"Fiction", "Non-Fiction", "Comics", "Education"}},
	}
}
