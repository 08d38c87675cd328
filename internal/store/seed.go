package store

import (
	"time"

	"retailflow/internal/domain"

	"github.com/google/uuid"
)

type seedProduct struct {
	name     string
	price    float64
	quantity int
	category string
}

// Starter catalog used when no persisted state can be loaded.
var seedCatalog = []seedProduct{
	{"Wireless Mouse", 599, 145, "Electronics"},
	{"Cotton T-Shirt", 399, 89, "Clothing"},
	{"Rice (5kg)", 250, 456, "Groceries"},
	{"Coffee Maker", 2499, 67, "Home & Kitchen"},
	{"Yoga Mat", 799, 123, "Sports"},
	{"LED Bulb (Pack of 4)", 299, 2, "Electronics"},
}

// seedState builds a fresh aggregate: the starter catalog, an empty cart, an
// empty ledger, and a newly generated session id.
func seedState(now time.Time) domain.State {
	products := make([]domain.Product, len(seedCatalog))
	for i, s := range seedCatalog {
		products[i] = domain.Product{
			ID:        uuid.New(),
			Name:      s.name,
			Price:     s.price,
			Quantity:  s.quantity,
			Category:  s.category,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return domain.State{
		Products:  products,
		Cart:      []domain.CartLine{},
		Sales:     []domain.Sale{},
		SessionID: uuid.New(),
	}
}
