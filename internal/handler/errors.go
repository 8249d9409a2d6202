package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/nikolayk812/orders-demo/internal/auth"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"go.uber.org/zap"
	"net/http"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// responses holds the status and message a route uses for each error kind.
// Zero values fall back to defaultResponses.
type responses map[domain.Kind]response

type response struct {
	status int
	detail string
}

var defaultResponses = responses{
	domain.KindBadRequest:       {http.StatusBadRequest, ""},
	domain.KindUnauthenticated:  {http.StatusUnauthorized, "Could not validate credentials"},
	domain.KindForbidden:        {http.StatusForbidden, "You are not authorized to access this resource"},
	domain.KindNotFound:         {http.StatusNotFound, "Shopping cart not found"},
	domain.KindConflict:         {http.StatusConflict, "Shopping cart is already checked out"},
	domain.KindStoreUnavailable: {http.StatusInternalServerError, "Internal server error"},
}

func (rs responses) lookup(kind domain.Kind) response {
	resp := defaultResponses[kind]
	if override, ok := rs[kind]; ok {
		if override.status != 0 {
			resp.status = override.status
		}
		if override.detail != "" {
			resp.detail = override.detail
		}
	}
	return resp
}

func (h *OrdersHandler) writeError(w http.ResponseWriter, r *http.Request, err error, rs responses) {
	kind := domain.KindOf(err)
	resp := rs.lookup(kind)

	detail := resp.detail
	if detail == "" {
		detail = badRequestDetail(err)
	}

	if kind == domain.KindStoreUnavailable {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	writeJSON(w, resp.status, errorResponse{
		Error:  kind.String(),
		Detail: detail,
	})
}

// badRequestDetail names the offending field of a rejected request without exposing
// the wrapped error chain.
func badRequestDetail(err error) string {
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Sprintf("Invalid %s: %s", decodeErr.Field, decodeErr.Reason)
	}
	return "Invalid request"
}

// writeAuthError renders authentication failures from auth.Middleware.
func writeAuthError(w http.ResponseWriter, _ *http.Request, err error) {
	detail := "Could not validate credentials"
	if auth.IsMissingSubject(err) {
		detail = "Invalid token"
	}

	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:  domain.KindUnauthenticated.String(),
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
