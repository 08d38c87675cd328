package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"retailflow/internal/domain"
	"retailflow/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	s, err := New(context.Background(), storage.NewStatePersister(kv), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return s, kv
}

// addTestProduct creates a product through the public operation so tests
// exercise the same path views do.
func addTestProduct(t *testing.T, s *Store, name string, price float64, quantity int) domain.Product {
	t.Helper()
	p, err := s.AddProduct(context.Background(), ProductInput{Name: name, Price: price, Quantity: quantity, Category: "Electronics"})
	if err != nil {
		t.Fatalf("failed to add product %s: %v", name, err)
	}
	return p
}

func TestNewSeedsStarterCatalogWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	snap := s.Snapshot()
	if len(snap.Products) != 6 {
		t.Fatalf("expected 6 seed products, got %d", len(snap.Products))
	}
	if len(snap.Cart) != 0 || len(snap.Sales) != 0 {
		t.Fatalf("expected empty cart and ledger, got %d cart lines, %d sales", len(snap.Cart), len(snap.Sales))
	}
	if snap.SessionID == uuid.Nil {
		t.Fatal("expected a generated session id")
	}
}

func TestNewSeedsWhenPersistedBlobIsCorrupt(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	if err := kv.Put(ctx, storage.StateKey, []byte(`{not json`)); err != nil {
		t.Fatalf("failed to seed corrupt blob: %v", err)
	}

	s, err := New(ctx, storage.NewStatePersister(kv), zap.NewNop())
	if err != nil {
		t.Fatalf("expected fallback to seed, got error: %v", err)
	}
	if got := len(s.Snapshot().Products); got != 6 {
		t.Fatalf("expected seed catalog after corrupt blob, got %d products", got)
	}
}

func TestAddProductRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.AddProduct(context.Background(), ProductInput{
		Name:     "  Desk Lamp  ",
		Price:    450,
		Quantity: 12,
		Category: "Home & Kitchen",
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	found := s.Snapshot().Product(created.ID)
	if found == nil {
		t.Fatal("created product not found in snapshot")
	}
	if found.Name != "Desk Lamp" {
		t.Errorf("expected trimmed name %q, got %q", "Desk Lamp", found.Name)
	}
	if found.Price != 450 || found.Quantity != 12 {
		t.Errorf("unexpected price/quantity: %v/%v", found.Price, found.Quantity)
	}
	if found.CreatedAt.IsZero() || found.UpdatedAt.IsZero() {
		t.Error("expected creation and update timestamps to be stamped")
	}
}

func TestAddProductReportsEveryViolatedField(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddProduct(context.Background(), ProductInput{Name: "   ", Price: -1, Quantity: -3})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected 3 violated fields, got %d: %v", len(verr.Fields), verr)
	}

	seen := map[string]bool{}
	for _, f := range verr.Fields {
		seen[f.Field] = true
	}
	for _, field := range []string{"name", "price", "quantity"} {
		if !seen[field] {
			t.Errorf("expected violation for %q", field)
		}
	}
}

func TestUpdateProductMergesAndRestamps(t *testing.T) {
	s, _ := newTestStore(t)
	p := addTestProduct(t, s, "Notebook", 50, 100)

	updated, err := s.UpdateProduct(context.Background(), p.ID, ProductInput{Name: "Notebook A5", Price: 60, Quantity: 90, Category: "Stationery"})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated product, got no-op")
	}
	if updated.Name != "Notebook A5" || updated.Price != 60 || updated.Quantity != 90 {
		t.Errorf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) && !updated.UpdatedAt.Equal(p.UpdatedAt) {
		t.Error("expected update timestamp to be restamped")
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Error("creation timestamp must not change on update")
	}
}

func TestUpdateProductUnknownIDIsSilentNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Snapshot()

	updated, err := s.UpdateProduct(context.Background(), uuid.New(), ProductInput{Name: "Ghost", Price: 1, Quantity: 1})
	if err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil product for unknown id, got %+v", updated)
	}
	if got := len(s.Snapshot().Products); got != len(before.Products) {
		t.Fatalf("product set changed on no-op: %d != %d", got, len(before.Products))
	}
}

func TestUpdateProductValidationLeavesStateUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	p := addTestProduct(t, s, "Notebook", 50, 100)

	_, err := s.UpdateProduct(context.Background(), p.ID, ProductInput{Name: "", Price: -5, Quantity: 10})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	found := s.Snapshot().Product(p.ID)
	if found.Name != "Notebook" || found.Price != 50 || found.Quantity != 100 {
		t.Errorf("failed update mutated product: %+v", found)
	}
}

func TestDeleteProductLeavesCartAndLedgerAlone(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Notebook", 50, 100)

	if _, err := s.AddToCart(ctx, p.ID, 2); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := s.ConfirmSale(ctx, domain.RoleEmployee); err != nil {
		t.Fatalf("ConfirmSale failed: %v", err)
	}
	if _, err := s.AddToCart(ctx, p.ID, 1); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	s.DeleteProduct(ctx, p.ID)

	snap := s.Snapshot()
	if snap.Product(p.ID) != nil {
		t.Fatal("product still present after delete")
	}
	if len(snap.Sales) != 1 {
		t.Fatalf("ledger changed on delete, got %d sales", len(snap.Sales))
	}
	if snap.CartLineFor(p.ID) == nil {
		t.Fatal("dangling cart line should remain until its next mutation")
	}

	// The dangling line fails its next mutation because the live lookup
	// misses.
	err := s.UpdateCartItem(ctx, p.ID, 1)
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("expected NotFoundError for dangling line, got %v", err)
	}
}

func TestAddToCartAccumulatesAndRevalidates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Notebook", 50, 10)

	if _, err := s.AddToCart(ctx, p.ID, 4); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	line, err := s.AddToCart(ctx, p.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if line.Quantity != 7 {
		t.Fatalf("expected accumulated quantity 7, got %d", line.Quantity)
	}

	_, err = s.AddToCart(ctx, p.ID, 5)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 10 {
		t.Errorf("expected available 10 in error, got %d", stockErr.Available)
	}

	if got := s.Snapshot().CartLineFor(p.ID).Quantity; got != 7 {
		t.Fatalf("failed add mutated the line: quantity %d", got)
	}
}

func TestAddToCartErrorKinds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Notebook", 50, 10)

	_, err := s.AddToCart(ctx, uuid.New(), 1)
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Errorf("expected NotFoundError for unknown product, got %v", err)
	}

	_, err = s.AddToCart(ctx, p.ID, 0)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for zero quantity, got %v", err)
	}

	_, err = s.AddToCart(ctx, p.ID, 11)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Errorf("expected InsufficientStockError, got %v", err)
	}
}

func TestUpdateCartItemSetsAbsoluteQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Notebook", 50, 10)

	if _, err := s.AddToCart(ctx, p.ID, 4); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if err := s.UpdateCartItem(ctx, p.ID, 2); err != nil {
		t.Fatalf("UpdateCartItem failed: %v", err)
	}
	if got := s.Snapshot().CartLineFor(p.ID).Quantity; got != 2 {
		t.Fatalf("expected absolute quantity 2, got %d", got)
	}

	// A line that isn't in the cart is a no-op once validation passes.
	other := addTestProduct(t, s, "Pen", 10, 5)
	if err := s.UpdateCartItem(ctx, other.ID, 3); err != nil {
		t.Fatalf("expected no-op for absent line, got %v", err)
	}
	if s.Snapshot().CartLineFor(other.ID) != nil {
		t.Fatal("no-op update created a cart line")
	}
}

func TestRemoveFromCartAndClearCart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := addTestProduct(t, s, "Notebook", 50, 10)
	b := addTestProduct(t, s, "Pen", 10, 5)

	s.AddToCart(ctx, a.ID, 1)
	s.AddToCart(ctx, b.ID, 1)

	s.RemoveFromCart(ctx, a.ID)
	if snap := s.Snapshot(); snap.CartLineFor(a.ID) != nil || snap.CartLineFor(b.ID) == nil {
		t.Fatal("RemoveFromCart removed the wrong line")
	}

	// Absent id is a no-op.
	s.RemoveFromCart(ctx, uuid.New())

	s.ClearCart(ctx)
	if got := len(s.Snapshot().Cart); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
}

func TestConfirmSaleHappyPath(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Wireless Mouse", 599, 145)

	if _, err := s.AddToCart(ctx, p.ID, 3); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	sale, err := s.ConfirmSale(ctx, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("ConfirmSale failed: %v", err)
	}

	if sale.Total != 1797 {
		t.Errorf("expected total 1797, got %v", sale.Total)
	}
	if sale.Subtotal != sale.Total {
		t.Errorf("subtotal %v must equal total %v", sale.Subtotal, sale.Total)
	}
	if sale.GeneratedBy != domain.RoleEmployee {
		t.Errorf("expected generatedBy %q, got %q", domain.RoleEmployee, sale.GeneratedBy)
	}
	if sale.SessionID != s.SessionID() {
		t.Error("sale must carry the store's session id")
	}

	snap := s.Snapshot()
	if got := snap.Product(p.ID).Quantity; got != 142 {
		t.Errorf("expected stock 142 after sale, got %d", got)
	}
	if len(snap.Cart) != 0 {
		t.Errorf("expected cart emptied, got %d lines", len(snap.Cart))
	}
	if len(snap.Sales) != 1 || snap.Sales[0].ID != sale.ID {
		t.Error("sale not appended to ledger")
	}
}

func TestConfirmSaleEmptyCart(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.ConfirmSale(context.Background(), domain.RoleEmployee)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if got := len(s.Snapshot().Sales); got != 0 {
		t.Fatalf("ledger mutated on empty cart: %d sales", got)
	}
}

func TestConfirmSaleIsAllOrNothing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := addTestProduct(t, s, "Notebook", 50, 10)
	b := addTestProduct(t, s, "Pen", 10, 5)

	s.AddToCart(ctx, a.ID, 2)
	s.AddToCart(ctx, b.ID, 4)

	// Stock moves underneath the cart between add and confirmation.
	if _, err := s.UpdateProduct(ctx, b.ID, ProductInput{Name: "Pen", Price: 10, Quantity: 3}); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	_, err := s.ConfirmSale(ctx, domain.RoleEmployee)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductName != "Pen" || stockErr.Available != 3 {
		t.Errorf("error must name the offending product and availability: %+v", stockErr)
	}

	snap := s.Snapshot()
	if snap.Product(a.ID).Quantity != 10 || snap.Product(b.ID).Quantity != 3 {
		t.Error("failed confirmation deducted stock")
	}
	if len(snap.Sales) != 0 {
		t.Error("failed confirmation appended to ledger")
	}
	if len(snap.Cart) != 2 {
		t.Error("failed confirmation mutated the cart")
	}
}

func TestConfirmSaleAgainstDeletedProduct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := addTestProduct(t, s, "Notebook", 50, 10)

	s.AddToCart(ctx, p.ID, 2)
	s.DeleteProduct(ctx, p.ID)

	_, err := s.ConfirmSale(ctx, domain.RoleEmployee)
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nferr.ProductName != "Notebook" {
		t.Errorf("error must name the missing product, got %+v", nferr)
	}
}

func TestSalesRoleScoping(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	persister := storage.NewStatePersister(kv)

	// A ledger with one sale from another device session and nothing else.
	foreign := domain.Sale{
		ID:        uuid.New(),
		DateTime:  time.Now().Add(-time.Hour),
		Items:     []domain.SaleItem{{ProductID: uuid.New(), ProductName: "Old", Price: 5, Quantity: 1, Total: 5}},
		Subtotal:  5,
		Total:     5,
		SessionID: uuid.New(),
	}
	prior := domain.State{
		Products:  []domain.Product{{ID: uuid.New(), Name: "Notebook", Price: 50, Quantity: 10, CreatedAt: time.Now(), UpdatedAt: time.Now()}},
		Cart:      []domain.CartLine{},
		Sales:     []domain.Sale{foreign},
		SessionID: uuid.New(),
	}
	if err := persister.Save(ctx, prior); err != nil {
		t.Fatalf("failed to persist prior state: %v", err)
	}

	s, err := New(ctx, persister, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	p := s.Snapshot().Products[0]
	s.AddToCart(ctx, p.ID, 1)
	mine, err := s.ConfirmSale(ctx, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("ConfirmSale failed: %v", err)
	}

	owner := s.Sales(domain.RoleOwner)
	if len(owner) != 2 {
		t.Fatalf("owner must see the full ledger, got %d sales", len(owner))
	}

	employee := s.Sales(domain.RoleEmployee)
	if len(employee) != 1 || employee[0].ID != mine.ID {
		t.Fatalf("employee must see only the current session's sales, got %d", len(employee))
	}
}

func TestLowStockBoundary(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	persister := storage.NewStatePersister(kv)
	state := domain.State{
		Products: []domain.Product{
			{ID: uuid.New(), Name: "two", Quantity: 2},
			{ID: uuid.New(), Name: "four", Quantity: 4},
			{ID: uuid.New(), Name: "five", Quantity: 5},
			{ID: uuid.New(), Name: "many", Quantity: 50},
		},
		Cart:      []domain.CartLine{},
		Sales:     []domain.Sale{},
		SessionID: uuid.New(),
	}
	if err := persister.Save(ctx, state); err != nil {
		t.Fatalf("failed to persist state: %v", err)
	}

	s, err := New(ctx, persister, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	low := s.LowStockProducts()
	if len(low) != 2 {
		t.Fatalf("expected exactly 2 low-stock products, got %d", len(low))
	}
	for _, p := range low {
		if p.Quantity >= domain.LowStockThreshold {
			t.Errorf("product %s with quantity %d is not low stock", p.Name, p.Quantity)
		}
	}
}

func TestStateRoundTripsThroughPersistence(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first, err := New(ctx, storage.NewStatePersister(kv), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	p := addTestProduct(t, first, "Notebook", 50, 10)
	first.AddToCart(ctx, p.ID, 2)
	first.ConfirmSale(ctx, domain.RoleEmployee)
	first.AddToCart(ctx, p.ID, 1)

	second, err := New(ctx, storage.NewStatePersister(kv), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to rebuild store: %v", err)
	}

	want, _ := json.Marshal(first.Snapshot())
	got, _ := json.Marshal(second.Snapshot())
	if string(want) != string(got) {
		t.Fatalf("round trip changed state:\nwant %s\ngot  %s", want, got)
	}
	if first.SessionID() != second.SessionID() {
		t.Error("session id must be stable across reloads")
	}
}

func TestSubscribersSeeEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var got []domain.State
	unsubscribe := s.Subscribe(func(snap domain.State) {
		got = append(got, snap)
	})

	p := addTestProduct(t, s, "Notebook", 50, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Product(p.ID) == nil {
		t.Error("notification snapshot missing the new product")
	}

	unsubscribe()
	s.AddToCart(ctx, p.ID, 1)
	if len(got) != 1 {
		t.Fatalf("unsubscribed subscriber was notified, got %d", len(got))
	}
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) (domain.State, bool, error) {
	return domain.State{}, false, nil
}

func (failingPersister) Save(context.Context, domain.State) error {
	return errors.New("quota exceeded")
}

func TestPersistenceFailureDoesNotRollBack(t *testing.T) {
	s, err := New(context.Background(), failingPersister{}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	p, err := s.AddProduct(context.Background(), ProductInput{Name: "Notebook", Price: 50, Quantity: 10})
	if err != nil {
		t.Fatalf("mutation must succeed despite persistence failure: %v", err)
	}
	if s.Snapshot().Product(p.ID) == nil {
		t.Fatal("in-memory state lost the mutation")
	}
}
