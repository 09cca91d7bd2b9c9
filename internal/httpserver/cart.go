package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getCart(c *gin.Context) {
	view, err := h.deps.CartSvc.Get(c.Request.Context(), currentRole(c), currentSession(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	err := h.deps.CartSvc.AddItem(c.Request.Context(), currentRole(c), currentSession(c), c.Param("productID"), in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	h.getCart(c)
}

func (h *handlers) setCartItem(c *gin.Context) {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	err := h.deps.CartSvc.SetItem(c.Request.Context(), currentRole(c), currentSession(c), c.Param("productID"), in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	h.getCart(c)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	err := h.deps.CartSvc.RemoveItem(c.Request.Context(), currentRole(c), currentSession(c), c.Param("productID"))
	if err != nil {
		fail(c, err)
		return
	}
	h.getCart(c)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.CartSvc.Clear(c.Request.Context(), currentSession(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
