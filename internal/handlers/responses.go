package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"totestore/internal/auth"
	"totestore/internal/catalog"
	"totestore/internal/models"
)

type ImageResponse struct {
	ID         uint          `json:"id"`
	Image      string        `json:"image"`
	Color      *models.Color `json:"color"`
	IsFeatured bool          `json:"is_featured"`
	Order      uint          `json:"order"`
}

type ProductResponse struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Price          string             `json:"price"`
	ProductType    models.ProductType `json:"product_type"`
	AvailableSizes *string            `json:"available_sizes"`
	Version        uint               `json:"version"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Images         []ImageResponse    `json:"images"`
}

// PageResponse is the read-only product detail document.
type PageResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       string             `json:"price"`
	ProductType models.ProductType `json:"product_type"`
	Images      []ImageResponse    `json:"images"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

func imageResponses(p *models.Product, url func(string) string) []ImageResponse {
	out := make([]ImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		out = append(out, ImageResponse{
			ID:         img.ID,
			Image:      url(img.Image),
			Color:      img.Color,
			IsFeatured: img.IsFeatured,
			Order:      img.Order,
		})
	}
	return out
}

func productResponse(p *models.Product, url func(string) string) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		ProductType:    p.ProductType,
		AvailableSizes: p.AvailableSizes,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Images:         imageResponses(p, url),
	}
}

func pageResponse(p *models.Product, url func(string) string) PageResponse {
	return PageResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ProductType: p.ProductType,
		Images:      imageResponses(p, url),
	}
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": catalog.ErrConflict.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
