package catalog

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"

	"totestore/internal/models"
)

const (
	maxTitleLen = 200
	maxSizesLen = 100
	maxPrice    = 100_000_000 // decimal(10,2)
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageUpload is one file of the uploaded_images field.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductInput carries the write fields of a create or an update. Nil pointers
// and empty slices mean the field was absent from the request.
type ProductInput struct {
	Title          *string
	Description    *string
	Price          *string
	ProductType    *string
	AvailableSizes *string
	// Version, when set, must equal the stored version (update only).
	Version *uint

	UploadedImages []ImageUpload
	// ImageColors pairs with UploadedImages by position; blank means no color.
	ImageColors []string
	// RemovedImages is ignored on create.
	RemovedImages []uint
}

type newImage struct {
	filename    string
	data        []byte
	contentType string
	color       *models.Color
}

// fields is a ProductInput after validation.
type fields struct {
	title          *string
	description    *string
	price          *decimal.Decimal
	productType    *models.ProductType
	availableSizes *string
	images         []newImage
}

// apply copies every present field onto p, keeping the existing value otherwise.
func (f *fields) apply(p *models.Product) {
	if f.title != nil {
		p.Title = *f.title
	}
	if f.description != nil {
		p.Description = *f.description
	}
	if f.price != nil {
		p.Price = *f.price
	}
	if f.productType != nil {
		p.ProductType = *f.productType
	}
	if f.availableSizes != nil {
		p.AvailableSizes = f.availableSizes
	}
}

// validate checks everything in the request before any write happens.
// With full set, title, description and price are required.
func (s *Service) validate(in ProductInput, full bool) (*fields, error) {
	f := &fields{}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, invalid("title", "this field may not be blank")
		}
		if utf8.RuneCountInString(t) > maxTitleLen {
			return nil, invalid("title", "ensure this field has no more than %d characters", maxTitleLen)
		}
		f.title = &t
	} else if full {
		return nil, invalid("title", "this field is required")
	}

	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, invalid("description", "this field may not be blank")
		}
		f.description = &d
	} else if full {
		return nil, invalid("description", "this field is required")
	}

	if in.Price != nil {
		p, err := parsePrice(*in.Price)
		if err != nil {
			return nil, err
		}
		f.price = &p
	} else if full {
		return nil, invalid("price", "this field is required")
	}

	if in.ProductType != nil {
		t := models.ProductType(strings.TrimSpace(*in.ProductType))
		if !t.Valid() {
			return nil, invalid("product_type", "%q is not a valid choice (%s)", *in.ProductType, models.Choices(models.ProductTypes))
		}
		f.productType = &t
	}

	if in.AvailableSizes != nil {
		if utf8.RuneCountInString(*in.AvailableSizes) > maxSizesLen {
			return nil, invalid("available_sizes", "ensure this field has no more than %d characters", maxSizesLen)
		}
		sizes := *in.AvailableSizes
		f.availableSizes = &sizes
	}

	images, err := s.checkImages(in.UploadedImages, in.ImageColors)
	if err != nil {
		return nil, err
	}
	f.images = images
	return f, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, invalid("price", "a valid number is required")
	}
	if p.IsNegative() {
		return decimal.Decimal{}, invalid("price", "ensure this value is greater than or equal to 0")
	}
	if !p.Equal(p.Round(2)) {
		return decimal.Decimal{}, invalid("price", "ensure that there are no more than 2 decimal places")
	}
	if p.GreaterThanOrEqual(decimal.NewFromInt(maxPrice)) {
		return decimal.Decimal{}, invalid("price", "ensure that there are no more than 10 digits in total")
	}
	return p, nil
}

// checkImages pairs uploads with colors. A non-empty color list must match the
// uploads one to one; an empty one leaves every image without a color.
func (s *Service) checkImages(uploads []ImageUpload, colors []string) ([]newImage, error) {
	if len(colors) > 0 && len(colors) != len(uploads) {
		return nil, invalid("image_colors", "number of uploaded images and image colors must match")
	}

	out := make([]newImage, 0, len(uploads))
	for i, u := range uploads {
		ct, err := s.checkImage(u)
		if err != nil {
			return nil, err
		}
		img := newImage{filename: u.Filename, data: u.Data, contentType: ct}
		if i < len(colors) {
			c, err := parseColor("image_colors", colors[i])
			if err != nil {
				return nil, err
			}
			img.color = c
		}
		out = append(out, img)
	}
	return out, nil
}

func (s *Service) checkImage(u ImageUpload) (string, error) {
	if len(u.Data) == 0 {
		return "", invalid("uploaded_images", "the submitted file %q is empty", u.Filename)
	}
	if s.maxImageBytes > 0 && int64(len(u.Data)) > s.maxImageBytes {
		return "", invalid("uploaded_images", "file %q is larger than %d bytes", u.Filename, s.maxImageBytes)
	}
	if ext := strings.ToLower(filepath.Ext(u.Filename)); !allowedImageExt[ext] {
		return "", invalid("uploaded_images", "unsupported image format %q", ext)
	}
	mt := mimetype.Detect(u.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", invalid("uploaded_images", "file %q is not a valid image", u.Filename)
	}
	return mt.String(), nil
}

// parseColor maps a color token to a Color. Blank means no color.
func parseColor(field, raw string) (*models.Color, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	c := models.Color(strings.ToUpper(raw))
	if !c.Valid() {
		return nil, invalid(field, "%q is not a valid color (%s)", raw, models.Choices(models.Colors))
	}
	return &c, nil
}
