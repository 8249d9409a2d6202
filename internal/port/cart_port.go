package port

import (
	"context"
	"github.com/nikolayk812/orders-demo/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	PutCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, cartID string) (bool, error)
	UpdateState(ctx context.Context, cartID string, expected, next domain.CartState) (domain.Cart, error)
	ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) (domain.Cart, error)
	QueryByOwner(ctx context.Context, ownerID string, state *domain.CartState) ([]domain.Cart, error)
	QueryByState(ctx context.Context, state domain.CartState) ([]domain.Cart, error)
}
