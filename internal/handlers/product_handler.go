package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"totestore/internal/catalog"
)

type ProductHandler struct {
	catalog       *catalog.Service
	log           zerolog.Logger
	maxImageBytes int64
}

func NewProductHandler(svc *catalog.Service, log zerolog.Logger, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{catalog: svc, log: log, maxImageBytes: maxImageBytes}
}

// audit records which user made a catalog write.
func (h *ProductHandler) audit(c *gin.Context, action string, productID uint) {
	ev := h.log.Info().Str("action", action).Uint("product_id", productID)
	if u := currentUser(c); u != nil {
		ev = ev.Uint("user_id", u.ID).Str("username", u.Username)
	}
	ev.Msg("catalog write")
}

// parseID reads a positive integer path parameter. Anything else is a 404,
// the same as a route that does not match.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]ProductResponse, 0, len(items))
	for i := range items {
		out = append(out, productResponse(&items[i], h.catalog.ImageURL))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, productResponse(p, h.catalog.ImageURL))
}

// GetProductPage serves the read-only product detail document.
func (h *ProductHandler) GetProductPage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(p, h.catalog.ImageURL))
}

func (h *ProductHandler) bindProduct(c *gin.Context) (catalog.ProductInput, bool) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, bindError(err))
		return catalog.ProductInput{}, false
	}
	in, err := form.input(h.maxImageBytes)
	if err != nil {
		respondError(c, h.log, err)
		return catalog.ProductInput{}, false
	}
	return in, true
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	p, err := h.catalog.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "create", p.ID)
	c.Header("Location", fmt.Sprintf("/api/products/%d", p.ID))
	c.JSON(http.StatusCreated, productResponse(p, h.catalog.ImageURL))
}

// UpdateProduct handles PUT (every scalar required) and PATCH (partial).
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	p, _, err := h.catalog.Update(c.Request.Context(), id, in, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "update", p.ID)
	c.JSON(http.StatusOK, productResponse(p, h.catalog.ImageURL))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "delete", id)
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) ReorderImages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form ImageOrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	p, err := h.catalog.ReorderImages(c.Request.Context(), id, form.ImageIDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "reorder_images", id)
	c.JSON(http.StatusOK, productResponse(p, h.catalog.ImageURL))
}

func (h *ProductHandler) UpdateImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}
	var form ImageForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, h.log, bindError(err))
		return
	}
	p, err := h.catalog.UpdateImage(c.Request.Context(), id, imageID, catalog.ImageInput{
		Color:      form.Color,
		IsFeatured: form.IsFeatured,
		Order:      form.Order,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit(c, "update_image", id)
	c.JSON(http.StatusOK, productResponse(p, h.catalog.ImageURL))
}
