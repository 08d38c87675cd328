package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the credential table and the route guards.
const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 5

// Product is a catalog entry. Quantity is the live stock on hand.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLine is one product's pending quantity in the cart. Name and price are
// snapshotted when the line is created; AvailableStock is the product's stock
// at the same moment. Stock is re-checked against the live product on every
// mutation, so the snapshot may go stale between renders without harm.
type CartLine struct {
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	Price          float64   `json:"price"`
	Quantity       int       `json:"quantity"`
	AvailableStock int       `json:"availableStock"`
}

// Total returns the line's extended price.
func (l CartLine) Total() float64 {
	return l.Price * float64(l.Quantity)
}

// SaleItem is a line of a confirmed sale, frozen at confirmation time.
type SaleItem struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Total       float64   `json:"total"`
}

// Sale is an immutable entry in the append-only sales ledger.
type Sale struct {
	ID          uuid.UUID  `json:"saleId"`
	DateTime    time.Time  `json:"dateTime"`
	Items       []SaleItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	Total       float64    `json:"total"`
	GeneratedBy string     `json:"generatedBy"`
	SessionID   uuid.UUID  `json:"sessionId"`
}

// UnitsSold returns the total quantity across the sale's items.
func (s Sale) UnitsSold() int {
	var n int
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// State is the authoritative aggregate of products, cart, and the sales
// ledger. SessionID is generated once per State lifetime and scopes sale
// visibility for non-owner roles. The whole aggregate serializes as a single
// JSON blob.
type State struct {
	Products  []Product  `json:"products"`
	Cart      []CartLine `json:"cart"`
	Sales     []Sale     `json:"sales"`
	SessionID uuid.UUID  `json:"sessionId"`
}

// Clone returns a deep copy. Subscribers and callers receive clones so the
// store's state can only change through its operations.
func (s State) Clone() State {
	out := State{
		Products:  make([]Product, len(s.Products)),
		Cart:      make([]CartLine, len(s.Cart)),
		Sales:     make([]Sale, len(s.Sales)),
		SessionID: s.SessionID,
	}
	copy(out.Products, s.Products)
	copy(out.Cart, s.Cart)
	for i, sale := range s.Sales {
		items := make([]SaleItem, len(sale.Items))
		copy(items, sale.Items)
		sale.Items = items
		out.Sales[i] = sale
	}
	return out
}

// Product returns the live product with the given id, or nil.
func (s State) Product(id uuid.UUID) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// CartLineFor returns the cart line for the given product id, or nil.
func (s State) CartLineFor(productID uuid.UUID) *CartLine {
	for i := range s.Cart {
		if s.Cart[i].ProductID == productID {
			return &s.Cart[i]
		}
	}
	return nil
}

// IsLowStock reports whether the product's stock is below the threshold.
func IsLowStock(p Product) bool {
	return p.Quantity < LowStockThreshold
}

// CartTotal sums the extended prices of all cart lines.
func CartTotal(cart []CartLine) float64 {
	var sum float64
	for _, line := range cart {
		sum += line.Total()
	}
	return sum
}

// Identity is an authenticated user, as persisted between visits. The
// credential table's password never leaves the auth package.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Valid reports whether all fields a restored session must carry are present.
func (id Identity) Valid() bool {
	return id.ID != "" && id.Name != "" && id.Role != ""
}

// DashboardPath returns the identity's own dashboard route.
func (id Identity) DashboardPath() string {
	if id.Role == RoleOwner {
		return "/owner"
	}
	return "/employee"
}
