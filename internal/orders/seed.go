package orders

import "time"

func seedDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

// SeedOrders returns the demonstration order book.
func SeedOrders() []Order {
	seed := []Order{
		{
			ID:       "CMD-001",
			Customer: CustomerRef{ID: 1, Name: "Jean Dupont", Email: "jean.dupont@email.com", Phone: "+237 690 123 456"},
			Items: []Item{
				{ProductID: 1, ProductName: "Nike Air Max 270", ProductImage: "/placeholder.svg?height=400&width=400&text=Nike+Air+Max+270+Front", Size: "42", Quantity: 1, Price: 45000},
			},
			Total: 45000, Status: StatusProcessing, Date: seedDay(2024, time.January, 15),
			ShippingAddress: "Douala, Akwa", PaymentMethod: "Mobile Money",
		},
		{
			ID:       "CMD-002",
			Customer: CustomerRef{ID: 2, Name: "Marie Kouam", Email: "marie.kouam@email.com", Phone: "+237 691 234 567"},
			Items: []Item{
				{ProductID: 2, ProductName: "Adidas Ultraboost 22", ProductImage: "/placeholder.svg?height=400&width=400&text=Adidas+Ultraboost+22+Front", Size: "38", Quantity: 2, Price: 52000},
			},
			Total: 104000, Status: StatusDelivered, Date: seedDay(2024, time.January, 14),
			ShippingAddress: "Yaoundé, Bastos", PaymentMethod: "Paiement à la livraison",
		},
		{
			ID:       "CMD-003",
			Customer: CustomerRef{ID: 3, Name: "Paul Mbarga", Email: "paul.mbarga@email.com", Phone: "+237 692 345 678"},
			Items: []Item{
				{ProductID: 3, ProductName: "Jordan 1 Retro High", ProductImage: "/placeholder.svg?height=400&width=400&text=Jordan+1+Retro+High+Front", Size: "44", Quantity: 1, Price: 68000},
			},
			Total: 68000, Status: StatusPending, Date: seedDay(2024, time.January, 13),
			ShippingAddress: "Douala, Bonanjo", PaymentMethod: "Mobile Money",
		},
		{
			ID:       "CMD-004",
			Customer: CustomerRef{ID: 4, Name: "Sophie Nkomo", Email: "sophie.nkomo@email.com", Phone: "+237 693 456 789"},
			Items: []Item{
				{ProductID: 5, ProductName: "Converse Chuck Taylor", ProductImage: "/placeholder.svg?height=400&width=400&text=Converse+Chuck+Taylor+Front", Size: "37", Quantity: 1, Price: 25000},
			},
			Total: 25000, Status: StatusCancelled, Date: seedDay(2024, time.January, 12),
			ShippingAddress: "Yaoundé, Melen", PaymentMethod: "Espèces", Notes: "Annulée par le client",
		},
	}
	for i := range seed {
		seed[i].UpdatedAt = seed[i].Date
	}
	return seed
}
