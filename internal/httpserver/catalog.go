package httpserver

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/domain"
	"glalex-shop/internal/service/catalog"
)

func (h *handlers) listProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Query:      strings.TrimSpace(c.Query("q")),
		CategoryID: strings.TrimSpace(c.Query("category")),
		Sort:       domain.ProductSort(c.Query("sort")),
		ActiveOnly: true,
	}
	// Admins browse the full catalog including retired products.
	if currentRole(c).IsAdmin() {
		filter.ActiveOnly = false
	}
	products, err := h.deps.CatalogSvc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.CatalogSvc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !p.Active && !currentRole(c).IsAdmin() {
		fail(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.CatalogSvc.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *handlers) serveMedia(c *gin.Context) {
	f, err := h.deps.Media.Open(c.Param("file"))
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}

func (h *handlers) createCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	cat, err := h.deps.CatalogSvc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	cat, err := h.deps.CatalogSvc.UpdateCategory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.deps.CatalogSvc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.CatalogSvc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.CatalogSvc.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.CatalogSvc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) uploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file required")
		return
	}
	src, err := file.Open()
	if err != nil {
		badRequest(c, "unreadable upload")
		return
	}
	defer src.Close()

	p, err := h.deps.CatalogSvc.SetImage(c.Request.Context(), c.Param("id"), src, file.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) clearProductImage(c *gin.Context) {
	if err := h.deps.CatalogSvc.ClearImage(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setStock(c *gin.Context) {
	var in struct {
		Stock int `json:"stock"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.CatalogSvc.SetStock(c.Request.Context(), c.Param("id"), in.Stock)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) adjustStock(c *gin.Context) {
	var in struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.CatalogSvc.AdjustStock(c.Request.Context(), c.Param("id"), in.Delta)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
