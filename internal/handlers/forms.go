package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"totestore/internal/catalog"
	"totestore/internal/models"
)

// ProductForm is the body of product create and update requests, multipart
// (with files) or JSON (scalars only).
type ProductForm struct {
	Title          *string                 `form:"title" json:"title"`
	Description    *string                 `form:"description" json:"description"`
	Price          *string                 `form:"price" json:"price"`
	ProductType    *string                 `form:"product_type" json:"product_type" binding:"omitempty,producttype"`
	AvailableSizes *string                 `form:"available_sizes" json:"available_sizes"`
	Version        *uint                   `form:"version" json:"version"`
	UploadedImages []*multipart.FileHeader `form:"uploaded_images" json:"-"`
	ImageColors    []string                `form:"image_colors" json:"image_colors" binding:"dive,productcolor"`
	RemovedImages  []uint                  `form:"removed_images" json:"removed_images"`
}

// ImageForm is the body of the single image update.
type ImageForm struct {
	Color      *string `form:"color" json:"color" binding:"omitempty,productcolor"`
	IsFeatured *bool   `form:"is_featured" json:"is_featured"`
	Order      *uint   `form:"order" json:"order"`
}

type ImageOrderForm struct {
	ImageIDs []uint `json:"image_ids" binding:"required"`
}

type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

var registerOnce sync.Once

// RegisterValidators adds the catalog enums to gin's validator and makes it
// report fields by their form name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("producttype", func(fl validator.FieldLevel) bool {
			return models.ProductType(strings.TrimSpace(fl.Field().String())).Valid()
		})
		// blank is allowed: it means the image has no color
		_ = v.RegisterValidation("productcolor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return s == "" || models.Color(strings.ToUpper(s)).Valid()
		})
	})
}

// bindError turns a binding failure into a ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &catalog.ValidationError{Message: "malformed request body: " + err.Error()}
	}
	fe := verrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}

	msg := fmt.Sprintf("failed on the %q rule", fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = "this field is required"
	case "producttype":
		msg = fmt.Sprintf("%q is not a valid choice (%s)", fe.Value(), models.Choices(models.ProductTypes))
	case "productcolor":
		msg = fmt.Sprintf("%q is not a valid color (%s)", fe.Value(), models.Choices(models.Colors))
	}
	return &catalog.ValidationError{Field: field, Message: msg}
}

// input reads the uploaded files and converts the form. Files larger than
// limit are cut at limit+1 bytes so the size check still rejects them.
func (f *ProductForm) input(limit int64) (catalog.ProductInput, error) {
	in := catalog.ProductInput{
		Title:          f.Title,
		Description:    f.Description,
		Price:          f.Price,
		ProductType:    f.ProductType,
		AvailableSizes: f.AvailableSizes,
		Version:        f.Version,
		ImageColors:    f.ImageColors,
		RemovedImages:  f.RemovedImages,
	}
	for _, fh := range f.UploadedImages {
		data, err := readFile(fh, limit)
		if err != nil {
			return in, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}
		in.UploadedImages = append(in.UploadedImages, catalog.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return in, nil
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit+1)
	}
	return io.ReadAll(r)
}
