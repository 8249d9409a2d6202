package handler

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/orders-demo/internal/auth"
	"github.com/nikolayk812/orders-demo/internal/codec"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"github.com/nikolayk812/orders-demo/internal/service"
	"go.uber.org/zap"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

type CartService interface {
	CreateCart(ctx context.Context, caller domain.Caller) (domain.Cart, error)
	DeleteCart(ctx context.Context, caller domain.Caller, cartID string) error
	CheckoutCart(ctx context.Context, caller domain.Caller, cartID string) (domain.Cart, error)
	UpdateItems(ctx context.Context, caller domain.Caller, cartID string, items []domain.CartItem) (domain.Cart, error)
	QueryOrders(ctx context.Context, caller domain.Caller, filter service.OrderFilter) ([]domain.Cart, error)
}

var (
	deleteResponses = responses{
		domain.KindNotFound:  {detail: "Shopping cart not found."},
		domain.KindForbidden: {status: http.StatusForbidden, detail: "You are not authorized to delete this shopping cart."},
	}
	checkoutResponses = responses{
		domain.KindForbidden: {status: http.StatusUnauthorized, detail: "You are not authorized to checkout this shopping cart"},
		domain.KindConflict:  {status: http.StatusBadRequest},
	}
	updateResponses = responses{
		domain.KindForbidden: {status: http.StatusUnauthorized, detail: "You are not authorized to use this shopping cart"},
	}
	queryResponses = responses{
		domain.KindBadRequest: {detail: "Query parameter 'user' or 'state' is required."},
		domain.KindForbidden:  {status: http.StatusUnauthorized},
	}
)

type OrdersHandler struct {
	svc CartService
	log *zap.Logger
}

func NewOrders(svc CartService, log *zap.Logger) (*OrdersHandler, error) {
	if svc == nil {
		return nil, errors.New("svc is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OrdersHandler{svc: svc, log: log}, nil
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	cart, err := h.svc.CreateCart(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, codec.FromCart(cart))
}

func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCart(r.Context(), caller, chi.URLParam(r, "cartID")); err != nil {
		h.writeError(w, r, err, deleteResponses)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{Detail: "Shopping cart deleted successfully"})
}

func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	cart, err := h.svc.CheckoutCart(r.Context(), caller, chi.URLParam(r, "cartID"))
	if err != nil {
		h.writeError(w, r, err, checkoutResponses)
		return
	}

	writeJSON(w, http.StatusOK, codec.FromCart(cart))
}

// UpdateItems replaces the cart's items with the JSON array in the body.
func (h *OrdersHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, domain.E(domain.KindBadRequest, "read body", err), updateResponses)
		return
	}

	items, err := codec.DecodeRequestItems(body)
	if err != nil {
		h.writeError(w, r, err, updateResponses)
		return
	}

	cart, err := h.svc.UpdateItems(r.Context(), caller, chi.URLParam(r, "cartID"), items)
	if err != nil {
		h.writeError(w, r, err, updateResponses)
		return
	}

	writeJSON(w, http.StatusOK, codec.FromCart(cart))
}

func (h *OrdersHandler) Query(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := service.OrderFilter{
		User:  query.Get("user"),
		State: query.Get("state"),
	}

	carts, err := h.svc.QueryOrders(r.Context(), caller, filter)
	if err != nil {
		h.writeError(w, r, err, queryResponses)
		return
	}

	writeJSON(w, http.StatusOK, codec.FromCarts(carts))
}

func (h *OrdersHandler) caller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, auth.ErrInvalidToken)
		return domain.Caller{}, false
	}
	return caller, true
}
