package models

import "github.com/shopspring/decimal"

// Product — таблица products
type Product struct {
	Base
	Title          string          `gorm:"size:200;not null"`
	Description    string          `gorm:"type:text;not null"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ProductType    ProductType     `gorm:"type:varchar(10);not null;default:'TOTEBAG'"`
	AvailableSizes *string         `gorm:"size:100"` // через запятую, напр. "S,M,L,XL"; имеет смысл только для TSHIRT
	Version        uint            `gorm:"not null;default:1"`
	Images         []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductImage — таблица product_images, строки читаются по возрастанию Order
type ProductImage struct {
	ID         uint   `gorm:"primaryKey"`
	ProductID  uint   `gorm:"index;not null"`
	Image      string `gorm:"size:255;not null"` // ключ в хранилище, напр. "product_images/tote_3f2a9c1e.jpg"
	Color      *Color `gorm:"type:varchar(10)"`
	IsFeatured bool   `gorm:"not null;default:false"`
	Order      uint   `gorm:"column:display_order;not null;default:0"`
}

// ImageOrdering — ORDER BY для чтения ProductImage
const ImageOrdering = "display_order asc, id asc"
