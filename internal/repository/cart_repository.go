package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orders-demo/internal/codec"
	"github.com/nikolayk812/orders-demo/internal/db"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"github.com/nikolayk812/orders-demo/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	row, err := r.q.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
		}
		return domain.Cart{}, storeErr("q.GetCart", err)
	}

	cart, err := mapCartRowToDomain(row)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartRowToDomain: %w", err)
	}

	return cart, nil
}

// PutCart is an unconditional upsert, used when a cart is created.
func (r *cartRepository) PutCart(ctx context.Context, cart domain.Cart) error {
	if cart.ID == "" {
		return fmt.Errorf("cartID is empty")
	}
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	items, err := codec.EncodeStoredItems(cart.Items)
	if err != nil {
		return fmt.Errorf("codec.EncodeStoredItems: %w", err)
	}

	err = r.q.UpsertCart(ctx, db.UpsertCartParams{
		CartID:  cart.ID,
		OwnerID: cart.OwnerID,
		State:   domain.ParseCartState(cart.State.String()).String(),
		Items:   items,
	})
	if err != nil {
		return storeErr("q.UpsertCart", err)
	}

	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, cartID string) (bool, error) {
	if cartID == "" {
		return false, fmt.Errorf("cartID is empty")
	}

	rowsAffected, err := r.q.DeleteCart(ctx, cartID)
	if err != nil {
		return false, storeErr("q.DeleteCart", err)
	}

	return rowsAffected > 0, nil
}

// UpdateState moves the cart from expected to next atomically, matching expected
// case-insensitively. When the precondition does not hold it reports domain.ErrNotFound
// or domain.ErrStateMismatch, and nothing changes.
func (r *cartRepository) UpdateState(ctx context.Context, cartID string, expected, next domain.CartState) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		row, err := q.UpdateCartState(ctx, db.UpdateCartStateParams{
			NextState:     next.String(),
			CartID:        cartID,
			ExpectedState: expected.String(),
		})
		if err == nil {
			cart, err := mapCartRowToDomain(row)
			if err != nil {
				return domain.Cart{}, fmt.Errorf("mapCartRowToDomain: %w", err)
			}
			return cart, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, storeErr("q.UpdateCartState", err)
		}

		current, err := q.GetCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
			}
			return domain.Cart{}, storeErr("q.GetCart", err)
		}

		return domain.Cart{}, fmt.Errorf("cart[%s] state[%s] expected[%s]: %w",
			cartID, current.State, expected, domain.ErrStateMismatch)
	})
}

// ReplaceItems overwrites the item list of a cart that is not paid. A paid cart is left
// untouched and reported as domain.ErrStateMismatch.
func (r *cartRepository) ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	encoded, err := codec.EncodeStoredItems(items)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("codec.EncodeStoredItems: %w", err)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		row, err := q.ReplaceCartItems(ctx, db.ReplaceCartItemsParams{
			CartID: cartID,
			Items:  encoded,
		})
		if err == nil {
			cart, err := mapCartRowToDomain(row)
			if err != nil {
				return domain.Cart{}, fmt.Errorf("mapCartRowToDomain: %w", err)
			}
			return cart, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, storeErr("q.ReplaceCartItems", err)
		}

		current, err := q.GetCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
			}
			return domain.Cart{}, storeErr("q.GetCart", err)
		}

		return domain.Cart{}, fmt.Errorf("cart[%s] state[%s]: %w", cartID, current.State, domain.ErrStateMismatch)
	})
}

func (r *cartRepository) QueryByOwner(ctx context.Context, ownerID string, state *domain.CartState) ([]domain.Cart, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	var (
		rows []db.Cart
		err  error
	)

	if state != nil {
		rows, err = r.q.ListCartsByOwnerAndState(ctx, db.ListCartsByOwnerAndStateParams{
			OwnerID: ownerID,
			State:   state.String(),
		})
		if err != nil {
			return nil, storeErr("q.ListCartsByOwnerAndState", err)
		}
	} else {
		rows, err = r.q.ListCartsByOwner(ctx, ownerID)
		if err != nil {
			return nil, storeErr("q.ListCartsByOwner", err)
		}
	}

	carts, err := mapCartRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapCartRowsToDomain: %w", err)
	}

	return carts, nil
}

func (r *cartRepository) QueryByState(ctx context.Context, state domain.CartState) ([]domain.Cart, error) {
	if state == "" {
		return nil, fmt.Errorf("state is empty")
	}

	rows, err := r.q.ListCartsByState(ctx, state.String())
	if err != nil {
		return nil, storeErr("q.ListCartsByState", err)
	}

	carts, err := mapCartRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapCartRowsToDomain: %w", err)
	}

	return carts, nil
}

func storeErr(op string, err error) error {
	return domain.E(domain.KindStoreUnavailable, op, err)
}

func mapCartRowToDomain(row db.Cart) (domain.Cart, error) {
	items, err := codec.DecodeStoredItems(row.Items)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", row.CartID, err)
	}

	return domain.Cart{
		ID:      row.CartID,
		OwnerID: row.OwnerID,
		Items:   items,
		State:   domain.ParseCartState(row.State),
	}, nil
}

func mapCartRowsToDomain(rows []db.Cart) ([]domain.Cart, error) {
	carts := make([]domain.Cart, 0, len(rows))

	for _, row := range rows {
		cart, err := mapCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartRowToDomain: %w", err)
		}

		carts = append(carts, cart)
	}

	return carts, nil
}
