package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ProductType — вид товара
type ProductType string

const (
	ProductTypeTotebag ProductType = "TOTEBAG"
	ProductTypeTShirt  ProductType = "TSHIRT"
)

// ProductTypes — все допустимые ProductType
var ProductTypes = []ProductType{ProductTypeTotebag, ProductTypeTShirt}

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeTotebag, ProductTypeTShirt:
		return true
	}
	return false
}

func (t ProductType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ProductType) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("product type: %w", err)
	}
	*t = ProductType(s)
	return nil
}

// Color — цвет картинки; без цвета — nil *Color
type Color string

const (
	ColorWhite  Color = "WHITE"
	ColorBlack  Color = "BLACK"
	ColorRed    Color = "RED"
	ColorBlue   Color = "BLUE"
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
)

// Colors — все допустимые Color
var Colors = []Color{ColorWhite, ColorBlack, ColorRed, ColorBlue, ColorGreen, ColorYellow}

func (c Color) Valid() bool {
	switch c {
	case ColorWhite, ColorBlack, ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	}
	return false
}

func (c Color) Value() (driver.Value, error) {
	return string(c), nil
}

func (c *Color) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}
	*c = Color(s)
	return nil
}

// Choices перечисляет допустимые значения через запятую, для текста ошибок
func Choices[T ~string](vals []T) string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported type %T", src)
}
