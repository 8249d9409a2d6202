package service_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nikolayk812/orders-demo/internal/domain"
)

// fakeRepository keeps carts in memory with the same contract as the PostgreSQL adapter.
type fakeRepository struct {
	mu    sync.Mutex
	carts map[string]domain.Cart

	// err, when set, fails every call as an unreachable store would.
	err error
	// beforeUpdateState and beforeReplaceItems run before the conditional writes take the lock.
	beforeUpdateState  func()
	beforeReplaceItems func()
}

func newFakeRepository(carts ...domain.Cart) *fakeRepository {
	r := &fakeRepository{carts: make(map[string]domain.Cart)}
	for _, cart := range carts {
		r.carts[cart.ID] = cart
	}
	return r
}

func (r *fakeRepository) GetCart(_ context.Context, cartID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return domain.Cart{}, r.err
	}

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
	}
	return clone(cart), nil
}

func (r *fakeRepository) PutCart(_ context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.carts[cart.ID] = clone(cart)
	return nil
}

func (r *fakeRepository) DeleteCart(_ context.Context, cartID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false, r.err
	}

	_, ok := r.carts[cartID]
	delete(r.carts, cartID)
	return ok, nil
}

func (r *fakeRepository) UpdateState(_ context.Context, cartID string, expected, next domain.CartState) (domain.Cart, error) {
	if r.beforeUpdateState != nil {
		r.beforeUpdateState()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return domain.Cart{}, r.err
	}

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
	}
	if !cart.State.Is(expected) {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrStateMismatch)
	}

	cart.State = next
	r.carts[cartID] = cart
	return clone(cart), nil
}

func (r *fakeRepository) ReplaceItems(_ context.Context, cartID string, items []domain.CartItem) (domain.Cart, error) {
	if r.beforeReplaceItems != nil {
		r.beforeReplaceItems()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return domain.Cart{}, r.err
	}

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
	}
	if cart.State.IsPaid() {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrStateMismatch)
	}

	cart.Items = slices.Clone(items)
	r.carts[cartID] = cart
	return clone(cart), nil
}

func (r *fakeRepository) QueryByOwner(_ context.Context, ownerID string, state *domain.CartState) ([]domain.Cart, error) {
	return r.filter(func(cart domain.Cart) bool {
		return cart.OwnerID == ownerID && (state == nil || cart.State.Is(*state))
	})
}

func (r *fakeRepository) QueryByState(_ context.Context, state domain.CartState) ([]domain.Cart, error) {
	return r.filter(func(cart domain.Cart) bool {
		return cart.State.Is(state)
	})
}

func (r *fakeRepository) filter(match func(domain.Cart) bool) ([]domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	result := []domain.Cart{}
	for _, cart := range r.carts {
		if match(cart) {
			result = append(result, clone(cart))
		}
	}

	slices.SortFunc(result, func(a, b domain.Cart) int {
		return strings.Compare(a.ID, b.ID)
	})

	return result, nil
}

func (r *fakeRepository) stored(cartID string) (domain.Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	return cart, ok
}

func clone(cart domain.Cart) domain.Cart {
	cart.Items = slices.Clone(cart.Items)
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart
}
