package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/modesta/storefront-api/internal/domain/order"
)

type placeOrderRequest struct {
	CartItems []order.CartItem `json:"cartItems"`
}

// PlaceOrder runs the checkout transaction for a cart. All stock
// decrements succeed together or none are applied.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.orders.Checkout(r.Context(), req.CartItems)
	if err == nil {
		respondStatus(w, r, http.StatusOK, true, "Order processed successfully")
		return
	}

	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case isInvalidReference(err):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case order.IsBusinessError(err):
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		respondInternal(w, r, err)
	}
}

func isInvalidReference(err error) bool {
	var refErr *order.InvalidReferenceError
	return errors.As(err, &refErr)
}
