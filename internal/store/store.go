package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"retailflow/internal/domain"
	"retailflow/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persister loads and saves the serialized aggregate. Save failures are
// logged by the store and never rolled back: the in-memory mutation has
// already happened by the time the blob is written.
type Persister interface {
	Load(ctx context.Context) (domain.State, bool, error)
	Save(ctx context.Context, state domain.State) error
}

// Subscriber receives a snapshot of the new state after every successful
// mutation, synchronously, before the mutating call returns. Subscribers
// must not call back into the store.
type Subscriber func(domain.State)

// Store is the single source of truth for products, cart, and sales. All
// mutations go through its operations; a mutex serializes them so at most
// one runs at a time.
type Store struct {
	mu        sync.Mutex
	state     domain.State
	persister Persister
	logger    *zap.Logger

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

// New builds a store from the persisted snapshot when one loads cleanly, and
// falls back to the seed catalog otherwise. A load failure is not fatal: a
// structurally incompatible blob means starting fresh, not crashing.
func New(ctx context.Context, persister Persister, logger *zap.Logger) (*Store, error) {
	if persister == nil {
		return nil, fmt.Errorf("store: persister is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		persister: persister,
		logger:    logger,
		subs:      make(map[int]Subscriber),
	}

	state, found, err := persister.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("Failed to load persisted state, seeding defaults", zap.Error(err))
		s.state = seedState(time.Now())
	case !found || state.SessionID == uuid.Nil:
		s.state = seedState(time.Now())
		logger.Info("Seeded starter catalog",
			zap.Int("products", len(s.state.Products)),
			zap.String("session_id", s.state.SessionID.String()),
		)
	default:
		s.state = state
		logger.Info("Restored persisted state",
			zap.Int("products", len(state.Products)),
			zap.Int("sales", len(state.Sales)),
			zap.String("session_id", state.SessionID.String()),
		)
	}

	s.persist(ctx)
	return s, nil
}

// Subscribe registers fn for state-change notifications and returns its
// removal func.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a deep copy of the current aggregate for read-side use.
func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SessionID returns the identifier generated at state initialization.
func (s *Store) SessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionID
}

// AddProduct validates the input and appends a new product to the catalog.
func (s *Store) AddProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, product, err := addProduct(s.state.Clone(), in, time.Now())
	if err != nil {
		metrics.StoreMutations.WithLabelValues("add_product", metrics.OutcomeRejected).Inc()
		return domain.Product{}, err
	}
	s.commit(ctx, "add_product", next)
	return product, nil
}

// UpdateProduct merges the validated input into the product with the given
// id. An unknown id is a silent no-op and returns nil.
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, product, err := updateProduct(s.state.Clone(), id, in, time.Now())
	if err != nil {
		metrics.StoreMutations.WithLabelValues("update_product", metrics.OutcomeRejected).Inc()
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	s.commit(ctx, "update_product", next)
	return product, nil
}

// DeleteProduct removes the product unconditionally; an absent id is a
// no-op. Cart lines and historical sales referencing the id are left alone:
// sales carry their own snapshots, and a dangling cart line fails its next
// mutation when the live lookup misses.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, removed := deleteProduct(s.state.Clone(), id)
	if !removed {
		return
	}
	s.commit(ctx, "delete_product", next)
}

// AddToCart adds quantity of the product to the cart, merging into an
// existing line when one exists.
func (s *Store) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, line, err := addToCart(s.state.Clone(), productID, quantity)
	if err != nil {
		metrics.StoreMutations.WithLabelValues("add_to_cart", metrics.OutcomeRejected).Inc()
		return domain.CartLine{}, err
	}
	s.commit(ctx, "add_to_cart", next)
	return line, nil
}

// UpdateCartItem sets the line's quantity outright. An absent line is a
// no-op once the quantity and live stock checks pass.
func (s *Store) UpdateCartItem(ctx context.Context, productID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := updateCartItem(s.state.Clone(), productID, quantity)
	if err != nil {
		metrics.StoreMutations.WithLabelValues("update_cart_item", metrics.OutcomeRejected).Inc()
		return err
	}
	s.commit(ctx, "update_cart_item", next)
	return nil
}

// RemoveFromCart drops the line for the product; absent is a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, removed := removeFromCart(s.state.Clone(), productID)
	if !removed {
		return
	}
	s.commit(ctx, "remove_from_cart", next)
}

// ClearCart empties the cart unconditionally.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Cart = []domain.CartLine{}
	s.commit(ctx, "clear_cart", next)
}

// ConfirmSale turns the cart into an immutable sale: stock is deducted, the
// sale is appended to the ledger, and the cart is emptied, all within one
// state transition. Any validation failure leaves all three untouched.
func (s *Store) ConfirmSale(ctx context.Context, generatedBy string) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, sale, err := confirmSale(s.state.Clone(), generatedBy, time.Now())
	if err != nil {
		metrics.StoreMutations.WithLabelValues("confirm_sale", metrics.OutcomeRejected).Inc()
		return domain.Sale{}, err
	}
	s.commit(ctx, "confirm_sale", next)
	s.logger.Info("Sale confirmed",
		zap.String("sale_id", sale.ID.String()),
		zap.Float64("total", sale.Total),
		zap.Int("items", len(sale.Items)),
		zap.String("generated_by", generatedBy),
	)
	return sale, nil
}

// Sales returns the ledger visible to the given role: owners see everything,
// everyone else sees only sales from the store's current session.
func (s *Store) Sales(role string) []domain.Sale {
	snap := s.Snapshot()
	if role == domain.RoleOwner {
		return snap.Sales
	}
	visible := make([]domain.Sale, 0, len(snap.Sales))
	for _, sale := range snap.Sales {
		if sale.SessionID == snap.SessionID {
			visible = append(visible, sale)
		}
	}
	return visible
}

// LowStockProducts returns every product below the low-stock threshold.
func (s *Store) LowStockProducts() []domain.Product {
	snap := s.Snapshot()
	low := make([]domain.Product, 0)
	for _, p := range snap.Products {
		if domain.IsLowStock(p) {
			low = append(low, p)
		}
	}
	return low
}

// commit installs the new state, notifies subscribers, and persists, in that
// order. Called with s.mu held.
func (s *Store) commit(ctx context.Context, op string, next domain.State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(op, metrics.OutcomeOK).Inc()
	s.notify(next.Clone())
	s.persist(ctx)
}

func (s *Store) notify(snapshot domain.State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, fn := range s.subs {
		fn(snapshot)
	}
}

// persist writes the current state through the adapter. Failures are logged
// and counted, never surfaced; the in-memory mutation stays committed.
func (s *Store) persist(ctx context.Context) {
	if err := s.persister.Save(ctx, s.state.Clone()); err != nil {
		metrics.PersistenceFailures.Inc()
		s.logger.Error("Failed to persist state", zap.Error(err))
	}
}
