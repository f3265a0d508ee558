package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"totestore/internal/models"
	"totestore/internal/storage"
)

// Cleanup holds the outcome of every best-effort file deletion of one operation.
type Cleanup []storage.DeleteOutcome

// Failures returns the deletions that did not succeed.
func (c Cleanup) Failures() []storage.DeleteOutcome {
	var out []storage.DeleteOutcome
	for _, o := range c {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Service owns products and their images: records in the database, files in storage.
type Service struct {
	db            *gorm.DB
	store         storage.Storage
	log           zerolog.Logger
	maxImageBytes int64
}

func NewService(db *gorm.DB, store storage.Storage, log zerolog.Logger, maxImageBytes int64) *Service {
	return &Service{
		db:            db,
		store:         store,
		log:           log.With().Str("component", "catalog").Logger(),
		maxImageBytes: maxImageBytes,
	}
}

// ImageURL is the public address of a stored image.
func (s *Service) ImageURL(key string) string {
	return s.store.URL(key)
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order(models.ImageOrdering)
}

// List returns every product, newest first, with images preloaded in one query.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	err := s.db.WithContext(ctx).
		Preload("Images", orderImages).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// Get returns one product with its images.
func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Preload("Images", orderImages).First(&p, id).Error; err != nil {
		return nil, lookupErr("product", id, err)
	}
	return &p, nil
}

// Create stores a product and its uploaded images. Nothing is written when
// the input is invalid.
func (s *Service) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	f, err := s.validate(in, true)
	if err != nil {
		return nil, err
	}

	p := models.Product{ProductType: models.ProductTypeTotebag, Version: 1}
	f.apply(&p)

	var saved []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		var err error
		saved, err = s.attachImages(ctx, tx, p.ID, f.images)
		return err
	})
	if err != nil {
		s.discard(ctx, saved)
		return nil, err
	}

	s.log.Info().Uint("product_id", p.ID).Int("images", len(f.images)).Msg("product created")
	return s.Get(ctx, p.ID)
}

// Update applies a create-style image upload, image removals and scalar
// changes to a product. Removed images are matched against this product only;
// ids of other products' images are ignored. With partial unset, title,
// description and price must be present.
//
// The record changes commit together. Files of removed images are deleted
// after the commit, best-effort; their outcomes are returned and logged.
func (s *Service) Update(ctx context.Context, id uint, in ProductInput, partial bool) (*models.Product, Cleanup, error) {
	f, err := s.validate(in, !partial)
	if err != nil {
		return nil, nil, err
	}

	var removed, saved []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr("product", id, err)
		}
		if in.Version != nil && *in.Version != p.Version {
			return fmt.Errorf("product %d at version %d, request has %d: %w", id, p.Version, *in.Version, ErrConflict)
		}

		if len(in.RemovedImages) > 0 {
			var imgs []models.ProductImage
			if err := tx.Where("product_id = ? AND id IN ?", p.ID, in.RemovedImages).Find(&imgs).Error; err != nil {
				return fmt.Errorf("find removed images: %w", err)
			}
			if len(imgs) > 0 {
				if err := tx.Delete(&imgs).Error; err != nil {
					return fmt.Errorf("delete images: %w", err)
				}
			}
			for _, img := range imgs {
				removed = append(removed, img.Image)
			}
		}

		var err error
		if saved, err = s.attachImages(ctx, tx, p.ID, f.images); err != nil {
			return err
		}

		f.apply(&p)
		return persist(tx, p.ID, p.Version, map[string]any{
			"title":           p.Title,
			"description":     p.Description,
			"price":           p.Price,
			"product_type":    p.ProductType,
			"available_sizes": p.AvailableSizes,
		})
	})
	if err != nil {
		s.discard(ctx, saved)
		return nil, nil, err
	}

	s.log.Info().Uint("product_id", id).Int("added", len(f.images)).Int("removed", len(removed)).Msg("product updated")
	cleanup := s.deleteFiles(ctx, id, removed)

	p, err := s.Get(ctx, id)
	return p, cleanup, err
}

// Delete removes a product and its images. Stored files are deleted after the
// records, best-effort: every file gets one attempt regardless of earlier failures.
func (s *Service) Delete(ctx context.Context, id uint) (Cleanup, error) {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Preload("Images").First(&p, id).Error; err != nil {
			return lookupErr("product", id, err)
		}
		for _, img := range p.Images {
			keys = append(keys, img.Image)
		}
		// the FK cascade covers this too, but sqlite only enforces it when the pragma is on
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		res := tx.Delete(&models.Product{}, p.ID)
		if res.Error != nil {
			return fmt.Errorf("delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("product_id", id).Int("images", len(keys)).Msg("product deleted")
	return s.deleteFiles(ctx, id, keys), nil
}

// persist writes changes only if the product is still at version, bumping it.
func persist(tx *gorm.DB, id, version uint, changes map[string]any) error {
	changes["version"] = version + 1
	changes["updated_at"] = time.Now()
	res := tx.Model(&models.Product{}).Where("id = ? AND version = ?", id, version).Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("save product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrConflict)
	}
	return nil
}

// attachImages stores the files and adds one image row per file, in order.
// It returns the keys stored so far even on error so they can be discarded.
func (s *Service) attachImages(ctx context.Context, tx *gorm.DB, productID uint, images []newImage) ([]string, error) {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		key := storage.NewImageKey(img.filename)
		if err := s.store.Save(ctx, key, img.data, img.contentType); err != nil {
			return keys, fmt.Errorf("store image %q: %w", img.filename, err)
		}
		keys = append(keys, key)

		row := models.ProductImage{ProductID: productID, Image: key, Color: img.color}
		if err := tx.Create(&row).Error; err != nil {
			return keys, fmt.Errorf("create image: %w", err)
		}
	}
	return keys, nil
}

func (s *Service) deleteFiles(ctx context.Context, productID uint, keys []string) Cleanup {
	if len(keys) == 0 {
		return nil
	}
	cleanup := Cleanup(storage.DeleteAll(ctx, s.store, keys))
	for _, o := range cleanup.Failures() {
		s.log.Warn().Err(o.Err).Uint("product_id", productID).Str("key", o.Key).Msg("failed to delete image file")
	}
	return cleanup
}

// discard removes files stored by a rolled back transaction.
func (s *Service) discard(ctx context.Context, keys []string) {
	for _, o := range storage.DeleteAll(ctx, s.store, keys) {
		if o.Failed() {
			s.log.Warn().Err(o.Err).Str("key", o.Key).Msg("failed to discard orphaned image file")
		}
	}
}
