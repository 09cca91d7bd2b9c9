package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/domain"
	orderrepo "glalex-shop/internal/repository/order"
	ordersvc "glalex-shop/internal/service/order"
	"glalex-shop/internal/service/report"
)

func (h *handlers) checkout(c *gin.Context) {
	var in ordersvc.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	o, err := h.deps.OrderSvc.Checkout(c.Request.Context(), currentRole(c), currentSession(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) listMyOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListMine(c.Request.Context(), currentRole(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), currentRole(c), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) viewInvoice(c *gin.Context) {
	o, err := h.deps.OrderSvc.Invoice(c.Request.Context(), currentRole(c), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Type", h.deps.Invoices.ContentType())
	c.Status(http.StatusOK)
	if err := h.deps.Invoices.Render(c.Writer, o); err != nil {
		_ = c.Error(err)
	}
}

func (h *handlers) exportInvoice(c *gin.Context) {
	o, err := h.deps.OrderSvc.ExportInvoice(c.Request.Context(), currentRole(c), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Type", h.deps.Invoices.ContentType())
	c.Header("Content-Disposition", `attachment; filename="invoice-`+o.Number+`"`)
	c.Status(http.StatusOK)
	if err := h.deps.Invoices.Render(c.Writer, o); err != nil {
		_ = c.Error(err)
	}
}

func (h *handlers) courierOrders(c *gin.Context) {
	scope := domain.OrderScope(c.Query("scope"))
	orders, err := h.deps.OrderSvc.ListForCourier(c.Request.Context(), currentRole(c), scope)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) claimOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Claim(c.Request.Context(), currentRole(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) deliverOrder(c *gin.Context) {
	var in ordersvc.DeliverInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	o, err := h.deps.OrderSvc.MarkDelivered(c.Request.Context(), currentRole(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	var filter orderrepo.ListFilter
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			badRequest(c, "unknown status")
			return
		}
		filter.Status = status
	}
	filter.CourierID = c.Query("courier")
	filter.Query = c.Query("q")

	orders, err := h.deps.OrderSvc.ListAll(c.Request.Context(), currentRole(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	status, err := domain.ToOrderStatus(in.Status)
	if err != nil {
		badRequest(c, "unknown status")
		return
	}
	o, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), currentRole(c), c.Param("id"), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) assignCourier(c *gin.Context) {
	var in struct {
		CourierID string `json:"courierId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.CourierID == "" {
		badRequest(c, "courierId required")
		return
	}
	if err := h.deps.OrderSvc.AssignCourier(c.Request.Context(), currentRole(c), c.Param("id"), in.CourierID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) dashboard(c *gin.Context) {
	role := currentRole(c)
	stats, err := h.deps.OrderSvc.Stats(c.Request.Context(), role)
	if err != nil {
		fail(c, err)
		return
	}
	inventory, err := h.deps.CatalogSvc.Inventory(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	clients, err := h.deps.AccountSvc.ListClients(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	recent, err := h.deps.OrderSvc.ListAll(c.Request.Context(), role, orderrepo.ListFilter{})
	if err != nil {
		fail(c, err)
		return
	}
	// ListAll sorts newest first.
	if len(recent) > 5 {
		recent = recent[:5]
	}
	unread, err := h.deps.MessagingSvc.Unread(c.Request.Context(), role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":       stats.Total,
			"today":       stats.Today,
			"pending":     stats.Pending,
			"delivered":   stats.Delivered,
			"unassigned":  stats.Unassigned,
			"paidRevenue": stats.PaidRevenue,
		},
		"clients":      len(clients),
		"recentOrders": recent,
		"unread":       unread,
		"inventory":    inventory,
	})
}

func (h *handlers) salesReport(c *gin.Context) {
	period := report.Period(c.DefaultQuery("period", string(report.PeriodDay)))
	sales, err := h.deps.ReportSvc.Sales(c.Request.Context(), currentRole(c), period, c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}
