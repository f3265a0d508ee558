package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"totestore/internal/models"
)

// ImageInput changes display metadata of one image. Nil fields are kept.
type ImageInput struct {
	// Color set to a blank string clears the color.
	Color      *string
	IsFeatured *bool
	Order      *uint
}

// ReorderImages sets the display order of a product's images to the position
// of their id in imageIDs. Every id must be one of the product's images, once.
// Images left out keep their current order.
func (s *Service) ReorderImages(ctx context.Context, productID uint, imageIDs []uint) (*models.Product, error) {
	if len(imageIDs) == 0 {
		return nil, invalid("image_ids", "this list may not be empty")
	}
	seen := make(map[uint]bool, len(imageIDs))
	for _, id := range imageIDs {
		if seen[id] {
			return nil, invalid("image_ids", "image %d is listed more than once", id)
		}
		seen[id] = true
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return lookupErr("product", productID, err)
		}

		var count int64
		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ? AND id IN ?", productID, imageIDs).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count images: %w", err)
		}
		if int(count) != len(imageIDs) {
			return invalid("image_ids", "every id must be an image of product %d", productID)
		}

		for pos, id := range imageIDs {
			if err := tx.Model(&models.ProductImage{}).
				Where("id = ?", id).
				Update("display_order", pos).Error; err != nil {
				return fmt.Errorf("order image %d: %w", id, err)
			}
		}
		return persist(tx, p.ID, p.Version, map[string]any{})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", productID).Int("images", len(imageIDs)).Msg("images reordered")
	return s.Get(ctx, productID)
}

// UpdateImage changes the color, featured flag or order of one image of a product.
func (s *Service) UpdateImage(ctx context.Context, productID, imageID uint, in ImageInput) (*models.Product, error) {
	changes := map[string]any{}
	if in.Color != nil {
		c, err := parseColor("color", *in.Color)
		if err != nil {
			return nil, err
		}
		if c == nil {
			changes["color"] = gorm.Expr("NULL")
		} else {
			changes["color"] = *c
		}
	}
	if in.IsFeatured != nil {
		changes["is_featured"] = *in.IsFeatured
	}
	if in.Order != nil {
		changes["display_order"] = *in.Order
	}
	if len(changes) == 0 {
		return nil, invalid("", "nothing to update")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return lookupErr("product", productID, err)
		}
		var img models.ProductImage
		if err := tx.Where("product_id = ?", productID).First(&img, imageID).Error; err != nil {
			return lookupErr("image", imageID, err)
		}
		if err := tx.Model(&img).Updates(changes).Error; err != nil {
			return fmt.Errorf("update image %d: %w", imageID, err)
		}
		return persist(tx, p.ID, p.Version, map[string]any{})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", productID).Uint("image_id", imageID).Msg("image updated")
	return s.Get(ctx, productID)
}
