package models

import "time"

// Base — общие поля для таблиц users и products
type Base struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
