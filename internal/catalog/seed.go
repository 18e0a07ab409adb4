package catalog

import (
	"fmt"
	"strings"
	"time"
)

func placeholder(name, view string) string {
	return fmt.Sprintf("/placeholder.svg?height=400&width=400&text=%s+%s", strings.ReplaceAll(name, " ", "+"), view)
}

func seedImages(name string) Images {
	return Images{
		Main:      placeholder(name, "Front"),
		Secondary: []string{placeholder(name, "Side"), placeholder(name, "Back")},
	}
}

func mustKnown(name string) Brand {
	b, err := KnownBrand(name)
	if err != nil {
		panic(err)
	}
	return b
}

func shoeSizes(from, to, stock int) []SizeStock {
	out := make([]SizeStock, 0, to-from+1)
	for s := from; s <= to; s++ {
		out = append(out, SizeStock{Size: fmt.Sprint(s), Stock: stock})
	}
	return out
}

// SeedProducts returns the demo catalog shipped with the in-memory backend.
func SeedProducts(now time.Time) []Product {
	day := func(offset int) time.Time { return now.AddDate(0, 0, -offset) }
	return []Product{
		{
			ID: 1, Name: "Nike Air Max 270", Price: 45000, Images: seedImages("Nike Air Max 270"),
			Category: CategoryShoes, Brand: mustKnown("Nike"),
			Description: "Chaussures de sport confortables avec technologie Air Max pour un confort optimal toute la journée",
			Sizes:       []SizeStock{{"38", 3}, {"39", 5}, {"40", 2}, {"41", 8}, {"42", 4}},
			Status:      StatusActive, Sales: 45, CreatedAt: day(60), UpdatedAt: day(2),
		},
		{
			ID: 2, Name: "Adidas Ultraboost 22", Price: 52000, Images: seedImages("Adidas Ultraboost 22"),
			Category: CategoryShoes, Brand: mustKnown("Adidas"),
			Description: "Chaussures de course haute performance avec semelle Boost révolutionnaire",
			Sizes:       shoeSizes(37, 44, 4),
			Status:      StatusActive, Sales: 38, CreatedAt: day(55), UpdatedAt: day(5),
		},
		{
			ID: 3, Name: "Jordan 1 Retro High", Price: 68000, Images: seedImages("Jordan 1 Retro High"),
			Category: CategoryShoes, Brand: mustKnown("Jordan"),
			Description: "Baskets iconiques de basketball avec design classique et qualité premium",
			Sizes:       shoeSizes(38, 46, 2),
			Status:      StatusActive, Sales: 52, CreatedAt: day(50), UpdatedAt: day(1),
		},
		{
			ID: 4, Name: "Puma RS-X", Price: 38000, Images: seedImages("Puma RS-X"),
			Category: CategoryShoes, Brand: mustKnown("Puma"),
			Description: "Sneakers rétro-futuristes avec design audacieux et technologie moderne",
			Sizes:       shoeSizes(37, 44, 3),
			Status:      StatusActive, Sales: 21, CreatedAt: day(45), UpdatedAt: day(9),
		},
		{
			ID: 5, Name: "Converse Chuck Taylor", Price: 25000, Images: seedImages("Converse Chuck Taylor"),
			Category: CategoryShoes, Brand: mustKnown("Converse"),
			Description: "Baskets classiques en toile, intemporelles et polyvalentes pour tous les styles",
			Sizes:       shoeSizes(36, 44, 6),
			Status:      StatusActive, Sales: 64, CreatedAt: day(40), UpdatedAt: day(3),
		},
		{
			ID: 6, Name: "New Balance 990v5", Price: 58000, Images: seedImages("New Balance 990v5"),
			Category: CategoryShoes, Brand: mustKnown("New Balance"),
			Description: "Chaussures premium Made in USA avec confort exceptionnel et durabilité",
			Sizes:       shoeSizes(38, 45, 1),
			Status:      StatusLowStock, Sales: 17, CreatedAt: day(35), UpdatedAt: day(4),
		},
		{
			ID: 7, Name: "Maillot PSG Domicile", Price: 35000, Images: seedImages("Maillot PSG Domicile"),
			Category: CategoryApparel, Brand: mustKnown("Nike"),
			Description: "Maillot officiel du Paris Saint-Germain pour la saison en cours",
			Sizes:       []SizeStock{{"S", 10}, {"M", 15}, {"L", 8}, {"XL", 5}},
			Status:      StatusActive, Sales: 32, CreatedAt: day(30), UpdatedAt: day(6),
		},
		{
			ID: 8, Name: "Ballon Nike Premier League", Price: 15000, Images: seedImages("Ballon Nike Premier League"),
			Category: CategoryBalls, Brand: mustKnown("Nike"),
			Description: "Ballon officiel de la Premier League",
			Sizes:       []SizeStock{{"Taille 5", 20}},
			Status:      StatusActive, Sales: 28, CreatedAt: day(25), UpdatedAt: day(7),
		},
		{
			ID: 9, Name: "Casquette Adidas", Price: 8000, Images: seedImages("Casquette Adidas"),
			Category: CategoryAccessories, Brand: mustKnown("Adidas"),
			Description: "Casquette ajustable avec logo brodé",
			Sizes:       []SizeStock{{UniqueSize, 25}},
			Status:      StatusLowStock, Sales: 15, CreatedAt: day(20), UpdatedAt: day(8),
		},
	}
}
