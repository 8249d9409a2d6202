package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"github.com/nikolayk812/orders-demo/internal/policy"
	"github.com/nikolayk812/orders-demo/internal/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/nikolayk812/orders-demo/internal/service")

// OrderFilter selects carts for QueryOrders. At least one field must be set.
type OrderFilter struct {
	User  string
	State string
}

// CartService owns every cart mutation. It checks existence, then ownership, then state,
// and relies on the store's conditional update to make checkout race-safe.
type CartService struct {
	repo  port.CartRepository
	log   *zap.Logger
	newID func() string
}

type Option func(*CartService)

func WithLogger(log *zap.Logger) Option {
	return func(s *CartService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIDGenerator overrides the cart id source, uuid.NewString by default.
func WithIDGenerator(fn func() string) Option {
	return func(s *CartService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewCart(repo port.CartRepository, opts ...Option) (*CartService, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}

	s := &CartService{
		repo:  repo,
		log:   zap.NewNop(),
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

func (s *CartService) CreateCart(ctx context.Context, caller domain.Caller) (_ domain.Cart, err error) {
	ctx, span := s.startSpan(ctx, "CreateCart", caller, "")
	defer func() { s.finish(span, "create cart", caller, "", err) }()

	if err := policy.Authorize(caller, caller.ID, policy.OpCreate); err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{
		ID:      s.newID(),
		OwnerID: caller.ID,
		Items:   []domain.CartItem{},
		State:   domain.CartStateOpen,
	}

	if err := s.repo.PutCart(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("repo.PutCart: %w", err)
	}

	return cart, nil
}

func (s *CartService) DeleteCart(ctx context.Context, caller domain.Caller, cartID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCart", caller, cartID)
	defer func() { s.finish(span, "delete cart", caller, cartID, err) }()

	if _, err := s.ownedCart(ctx, caller, cartID, policy.OpDelete); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("repo.DeleteCart: %w", err)
	}
	if !deleted {
		// removed concurrently between the lookup and the delete
		return fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
	}

	return nil
}

func (s *CartService) CheckoutCart(ctx context.Context, caller domain.Caller, cartID string) (_ domain.Cart, err error) {
	ctx, span := s.startSpan(ctx, "CheckoutCart", caller, cartID)
	defer func() { s.finish(span, "checkout cart", caller, cartID, err) }()

	cart, err := s.ownedCart(ctx, caller, cartID, policy.OpCheckout)
	if err != nil {
		return domain.Cart{}, err
	}

	if cart.State.IsPaid() {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrAlreadyCheckedOut)
	}

	updated, err := s.repo.UpdateState(ctx, cartID, cart.State, cart.State.Paid())
	if err != nil {
		if errors.Is(err, domain.ErrStateMismatch) {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrAlreadyCheckedOut)
		}
		return domain.Cart{}, fmt.Errorf("repo.UpdateState: %w", err)
	}

	return updated, nil
}

// UpdateItems replaces the whole item list of a cart that is not paid.
func (s *CartService) UpdateItems(ctx context.Context, caller domain.Caller, cartID string, items []domain.CartItem) (_ domain.Cart, err error) {
	ctx, span := s.startSpan(ctx, "UpdateItems", caller, cartID)
	defer func() { s.finish(span, "update cart items", caller, cartID, err) }()

	cart, err := s.ownedCart(ctx, caller, cartID, policy.OpUpdate)
	if err != nil {
		return domain.Cart{}, err
	}

	if cart.State.IsPaid() {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrAlreadyCheckedOut)
	}

	if err := validateItems(items); err != nil {
		return domain.Cart{}, err
	}

	if items == nil {
		items = []domain.CartItem{}
	}

	updated, err := s.repo.ReplaceItems(ctx, cartID, items)
	if err != nil {
		if errors.Is(err, domain.ErrStateMismatch) {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrAlreadyCheckedOut)
		}
		return domain.Cart{}, fmt.Errorf("repo.ReplaceItems: %w", err)
	}

	return updated, nil
}

func (s *CartService) QueryOrders(ctx context.Context, caller domain.Caller, filter OrderFilter) (_ []domain.Cart, err error) {
	ctx, span := s.startSpan(ctx, "QueryOrders", caller, "")
	span.SetAttributes(
		attribute.String("filter.user", filter.User),
		attribute.String("filter.state", filter.State),
	)
	defer func() { s.finish(span, "query orders", caller, "", err) }()

	switch {
	case filter.User != "" && filter.State != "":
		if err := policy.Authorize(caller, filter.User, policy.OpQueryByOwner); err != nil {
			return nil, err
		}

		state := domain.ParseCartState(filter.State)
		carts, err := s.repo.QueryByOwner(ctx, filter.User, &state)
		if err != nil {
			return nil, fmt.Errorf("repo.QueryByOwner: %w", err)
		}
		return carts, nil

	case filter.User != "":
		if err := policy.Authorize(caller, filter.User, policy.OpQueryByOwner); err != nil {
			return nil, err
		}

		carts, err := s.repo.QueryByOwner(ctx, filter.User, nil)
		if err != nil {
			return nil, fmt.Errorf("repo.QueryByOwner: %w", err)
		}
		return carts, nil

	case filter.State != "":
		if err := policy.Authorize(caller, "", policy.OpQueryByState); err != nil {
			return nil, err
		}

		carts, err := s.repo.QueryByState(ctx, domain.ParseCartState(filter.State))
		if err != nil {
			return nil, fmt.Errorf("repo.QueryByState: %w", err)
		}
		return carts, nil

	default:
		return nil, fmt.Errorf("user or state filter is required: %w", domain.ErrBadRequest)
	}
}

// ownedCart loads the cart and applies the owner-only rule for op.
func (s *CartService) ownedCart(ctx context.Context, caller domain.Caller, cartID string, op policy.Operation) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty: %w", domain.ErrBadRequest)
	}

	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	if err := policy.Authorize(caller, cart.OwnerID, op); err != nil {
		return domain.Cart{}, err
	}

	return cart, nil
}

func validateItems(items []domain.CartItem) error {
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		if item.ItemID == "" {
			return invalidItem(i, "item_id", "empty")
		}
		if item.Name == "" {
			return invalidItem(i, "name", "empty")
		}
		if item.Price.IsNegative() {
			return invalidItem(i, "price", "negative")
		}
		if item.Quantity < 0 {
			return invalidItem(i, "quantity", "negative")
		}
		if _, ok := seen[item.ItemID]; ok {
			return invalidItem(i, "item_id", "duplicated")
		}
		seen[item.ItemID] = struct{}{}
	}

	return nil
}

func invalidItem(i int, field, reason string) error {
	return fmt.Errorf("%w: %w", domain.ErrBadRequest, &domain.DecodeError{
		Field:  fmt.Sprintf("items[%d].%s", i, field),
		Reason: reason,
	})
}

func (s *CartService) startSpan(ctx context.Context, op string, caller domain.Caller, cartID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "CartService."+op)
	span.SetAttributes(attribute.String("caller.id", caller.ID))
	if cartID != "" {
		span.SetAttributes(attribute.String("cart.id", cartID))
	}
	return ctx, span
}

func (s *CartService) finish(span trace.Span, msg string, caller domain.Caller, cartID string, err error) {
	defer span.End()

	fields := []zap.Field{
		zap.String("caller_id", caller.ID),
		zap.Bool("caller_is_admin", caller.IsAdmin),
	}
	if cartID != "" {
		fields = append(fields, zap.String("cart_id", cartID))
	}

	if err == nil {
		span.SetStatus(codes.Ok, "")
		s.log.Debug(msg, fields...)
		return
	}

	fields = append(fields, zap.Error(err))
	kind := domain.KindOf(err)
	span.SetAttributes(attribute.String("error.kind", kind.String()))

	if kind == domain.KindStoreUnavailable {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error(msg+" failed", fields...)
		return
	}

	s.log.Warn(msg+" rejected", fields...)
}
