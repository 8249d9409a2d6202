package policy

import (
	"fmt"
	"github.com/nikolayk812/orders-demo/internal/domain"
)

type Operation int

const (
	OpCreate Operation = iota
	OpDelete
	OpCheckout
	OpUpdate
	OpQueryByOwner
	OpQueryByState
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpCheckout:
		return "checkout"
	case OpUpdate:
		return "update"
	case OpQueryByOwner:
		return "query_by_owner"
	case OpQueryByState:
		return "query_by_state"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Allowed decides whether a caller may perform op on a resource owned by resourceOwnerID.
// For OpQueryByOwner the resource owner is the requested user filter.
// Admins only gain read access; single-cart mutations are owner-only.
func Allowed(callerID string, callerIsAdmin bool, resourceOwnerID string, op Operation) bool {
	if callerID == "" {
		return false
	}

	switch op {
	case OpCreate:
		return true
	case OpDelete, OpCheckout, OpUpdate:
		return callerID == resourceOwnerID
	case OpQueryByOwner:
		return callerID == resourceOwnerID || callerIsAdmin
	case OpQueryByState:
		return callerIsAdmin
	default:
		return false
	}
}

// Authorize is Allowed for a domain.Caller, returning domain.ErrForbidden on deny.
func Authorize(caller domain.Caller, resourceOwnerID string, op Operation) error {
	if !Allowed(caller.ID, caller.IsAdmin, resourceOwnerID, op) {
		return fmt.Errorf("%s by caller[%s]: %w", op, caller.ID, domain.ErrForbidden)
	}
	return nil
}
