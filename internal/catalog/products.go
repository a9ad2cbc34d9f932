package catalog

import "github.com/shopspring/decimal"

// Default is the farm shop's current price list.
func Default() *Catalog {
	return New(
		Product{
			ID:          "p1",
			Name:        "Oyster Mushrooms",
			Weight:      "200g",
			Price:       decimal.NewFromInt(89),
			Tag:         "Premium Organic",
			Description: "Rich, meaty texture with a subtle nutty flavor.",
		},
		Product{
			ID:          "p2",
			Name:        "Milky Mushrooms",
			Weight:      "200g",
			Price:       decimal.NewFromInt(69),
			Tag:         "Locally Grown",
			Description: "Tender, milky-white caps with a delicate, mild taste.",
		},
		Product{
			ID:          "p3",
			Name:        "Button Mushrooms",
			Weight:      "200g",
			Price:       decimal.NewFromInt(79),
			Tag:         "Fresh Harvest",
			Description: "The most versatile variety, mild and pleasant.",
		},
		Product{
			ID:          "p4",
			Name:        "Fresh Paddy Straw Mushrooms",
			Weight:      "1kg",
			Price:       decimal.NewFromInt(25),
			Tag:         "Bulk Value",
			Description: "Bulk pack for families and commercial kitchens.",
		},
		Product{
			ID:          "p5",
			Name:        "Mushroom Spawn (Growing Kit)",
			Weight:      "1kg",
			Price:       decimal.NewFromInt(100),
			Tag:         "Grow Your Own",
			Description: "Spawn for home and small-farm cultivation.",
		},
	)
}
