package handler

import (
	"net/http"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/middleware"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
)

// PDVHandler serves the point of sale: direct checkout and the session cart.
// The cart session is the authenticated user.
type PDVHandler struct {
	checkout service.CheckoutService
	cart     service.CartService
}

func NewPDVHandler(checkout service.CheckoutService, cart service.CartService) *PDVHandler {
	return &PDVHandler{checkout: checkout, cart: cart}
}

func sessionID(c *gin.Context) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.UserID == "" {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return "", false
	}
	return claims.UserID, true
}

func (h *PDVHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PDVHandler) GetCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	resp, err := h.cart.Get(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CartAction applies add_item, set_quantity, remove_item or clear.
func (h *PDVHandler) CartAction(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.CartActionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cart.Apply(c.Request.Context(), sid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) ClearCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.cart.Clear(c.Request.Context(), sid); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PDVHandler) CheckoutCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.CartCheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cart.Checkout(c.Request.Context(), sid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
