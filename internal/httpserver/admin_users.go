package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/service/account"
)

func (h *handlers) listCouriers(c *gin.Context) {
	couriers, err := h.deps.AccountSvc.ListCouriers(c.Request.Context(), c.Query("q"), c.Query("active") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"couriers": couriers})
}

func (h *handlers) createCourier(c *gin.Context) {
	var in account.CourierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.AccountSvc.CreateCourier(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) getCourier(c *gin.Context) {
	p, err := h.deps.AccountSvc.GetCourier(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) updateCourier(c *gin.Context) {
	var in account.CourierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.AccountSvc.UpdateCourier(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) setCourierActive(c *gin.Context) {
	var in struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.deps.AccountSvc.SetCourierActive(c.Request.Context(), c.Param("id"), in.Active); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listClients(c *gin.Context) {
	clients, err := h.deps.AccountSvc.ListClients(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *handlers) setUserActive(c *gin.Context) {
	var in struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.deps.AccountSvc.SetUserActive(c.Request.Context(), c.Param("id"), in.Active); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) deleteUser(c *gin.Context) {
	if err := h.deps.AccountSvc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
