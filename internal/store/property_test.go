package store

import (
	"context"
	"testing"

	"retailflow/internal/domain"
	"retailflow/internal/storage"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func propStore(t *testing.T) *Store {
	s, err := New(context.Background(), storage.NewStatePersister(storage.NewMemory()), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return s
}

// A cart line's quantity is always the sum of its successful adds, and that
// sum never exceeds the product's stock; a rejected add changes nothing.
func TestProperty_CartQuantityIsSumOfSuccessfulAdds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cart accumulates adds and never exceeds stock", prop.ForAll(
		func(stock int, adds []int) bool {
			s := propStore(t)
			ctx := context.Background()

			p, err := s.AddProduct(ctx, ProductInput{Name: "Widget", Price: 10, Quantity: stock})
			if err != nil {
				return false
			}

			expected := 0
			for _, quantity := range adds {
				_, err := s.AddToCart(ctx, p.ID, quantity)
				if err == nil {
					expected += quantity
				}
			}

			snap := s.Snapshot()
			line := snap.CartLineFor(p.ID)
			if expected == 0 {
				return line == nil
			}
			return line != nil && line.Quantity == expected && expected <= stock
		},
		gen.IntRange(1, 200),
		gen.SliceOf(gen.IntRange(1, 60)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Confirming a sale conserves units: stock before equals stock after plus
// units sold, and the sale total is price times quantity.
func TestProperty_ConfirmSaleConservesUnits(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock deduction matches units sold", prop.ForAll(
		func(stock int, quantity int, price float64) bool {
			if quantity > stock {
				quantity = stock
			}
			s := propStore(t)
			ctx := context.Background()

			p, err := s.AddProduct(ctx, ProductInput{Name: "Widget", Price: price, Quantity: stock})
			if err != nil {
				return false
			}
			if _, err := s.AddToCart(ctx, p.ID, quantity); err != nil {
				return false
			}

			sale, err := s.ConfirmSale(ctx, domain.RoleEmployee)
			if err != nil {
				return false
			}

			snap := s.Snapshot()
			after := snap.Product(p.ID).Quantity
			if after+sale.UnitsSold() != stock {
				return false
			}
			return sale.Total == price*float64(quantity) && len(snap.Cart) == 0
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 500),
		gen.Float64Range(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Any valid product input is retrievable by the returned id with the same
// attributes and non-negative price and quantity.
func TestProperty_AddProductPreservesAttributes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("created products keep their attributes", prop.ForAll(
		func(name string, price float64, quantity int) bool {
			s := propStore(t)

			created, err := s.AddProduct(context.Background(), ProductInput{
				Name:     name,
				Price:    price,
				Quantity: quantity,
			})
			if err != nil {
				return false
			}

			snap := s.Snapshot()
			found := snap.Product(created.ID)
			if found == nil {
				return false
			}
			return found.Name == name &&
				found.Price == price &&
				found.Quantity == quantity &&
				found.Price >= 0 &&
				found.Quantity >= 0
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.Float64Range(0, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
