package store

// Pure state transitions: each takes the previous aggregate and returns the
// next one, or an error with the previous aggregate untouched. The Store
// serializes calls and owns persistence; nothing in this file has side
// effects, so every rule here is testable without storage.

import (
	"time"

	"retailflow/internal/domain"

	"github.com/google/uuid"
)

func addProduct(st domain.State, in ProductInput, now time.Time) (domain.State, domain.Product, error) {
	in = in.normalized()
	if verr := validateProduct(in); verr != nil {
		return st, domain.Product{}, verr
	}

	product := domain.Product{
		ID:        uuid.New(),
		Name:      in.Name,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Category:  in.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.Products = append(st.Products, product)
	return st, product, nil
}

func updateProduct(st domain.State, id uuid.UUID, in ProductInput, now time.Time) (domain.State, *domain.Product, error) {
	in = in.normalized()
	if verr := validateProduct(in); verr != nil {
		return st, nil, verr
	}

	p := st.Product(id)
	if p == nil {
		// Unknown id is a silent no-op.
		return st, nil, nil
	}
	p.Name = in.Name
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.Category = in.Category
	p.UpdatedAt = now
	return st, p, nil
}

func deleteProduct(st domain.State, id uuid.UUID) (domain.State, bool) {
	for i := range st.Products {
		if st.Products[i].ID == id {
			st.Products = append(st.Products[:i], st.Products[i+1:]...)
			return st, true
		}
	}
	return st, false
}

func addToCart(st domain.State, productID uuid.UUID, quantity int) (domain.State, domain.CartLine, error) {
	product := st.Product(productID)
	if product == nil {
		return st, domain.CartLine{}, &NotFoundError{ProductID: productID}
	}
	if verr := validateCartQuantity(quantity); verr != nil {
		return st, domain.CartLine{}, verr
	}
	if quantity > product.Quantity {
		return st, domain.CartLine{}, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Quantity,
			Requested:   quantity,
		}
	}

	if line := st.CartLineFor(productID); line != nil {
		// Additive merge; the combined quantity must still fit live stock,
		// otherwise the whole call fails and the line keeps its old quantity.
		combined := line.Quantity + quantity
		if combined > product.Quantity {
			return st, domain.CartLine{}, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   combined,
			}
		}
		line.Quantity = combined
		return st, *line, nil
	}

	line := domain.CartLine{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Price:          product.Price,
		Quantity:       quantity,
		AvailableStock: product.Quantity,
	}
	st.Cart = append(st.Cart, line)
	return st, line, nil
}

func updateCartItem(st domain.State, productID uuid.UUID, quantity int) (domain.State, error) {
	if verr := validateCartQuantity(quantity); verr != nil {
		return st, verr
	}
	product := st.Product(productID)
	if product == nil {
		return st, &NotFoundError{ProductID: productID}
	}
	if quantity > product.Quantity {
		return st, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Quantity,
			Requested:   quantity,
		}
	}

	if line := st.CartLineFor(productID); line != nil {
		line.Quantity = quantity
	}
	// Absent line is a no-op.
	return st, nil
}

func removeFromCart(st domain.State, productID uuid.UUID) (domain.State, bool) {
	for i := range st.Cart {
		if st.Cart[i].ProductID == productID {
			st.Cart = append(st.Cart[:i], st.Cart[i+1:]...)
			return st, true
		}
	}
	return st, false
}

func confirmSale(st domain.State, generatedBy string, now time.Time) (domain.State, domain.Sale, error) {
	if len(st.Cart) == 0 {
		return st, domain.Sale{}, ErrEmptyCart
	}

	// Stock may have moved since the lines were added; every line is checked
	// against the live product before anything mutates, so a failure here
	// leaves products, cart, and ledger exactly as they were.
	for _, line := range st.Cart {
		product := st.Product(line.ProductID)
		if product == nil {
			return st, domain.Sale{}, &NotFoundError{ProductID: line.ProductID, ProductName: line.ProductName}
		}
		if line.Quantity > product.Quantity {
			return st, domain.Sale{}, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   line.Quantity,
			}
		}
	}

	items := make([]domain.SaleItem, len(st.Cart))
	for i, line := range st.Cart {
		items[i] = domain.SaleItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Total:       line.Total(),
		}
		product := st.Product(line.ProductID)
		product.Quantity -= line.Quantity
		product.UpdatedAt = now
	}

	subtotal := domain.CartTotal(st.Cart)
	sale := domain.Sale{
		ID:          uuid.New(),
		DateTime:    now,
		Items:       items,
		Subtotal:    subtotal,
		Total:       subtotal,
		GeneratedBy: generatedBy,
		SessionID:   st.SessionID,
	}
	st.Sales = append(st.Sales, sale)
	st.Cart = []domain.CartLine{}
	return st, sale, nil
}
