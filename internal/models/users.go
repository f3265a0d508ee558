package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role — роль пользователя
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// CanManageCatalog — может ли роль менять товары
func (r Role) CanManageCatalog() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User — таблица users
type User struct {
	Base
	Email        string `gorm:"uniqueIndex"`
	Username     string `gorm:"uniqueIndex;not null"` // ← никнейм (логин)
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(16);not null;default:'customer'"`
}

// AuthToken — таблица auth_tokens: один бессрочный ключ на пользователя
type AuthToken struct {
	Key       string `gorm:"primaryKey;size:40"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// HashPassword превращает обычный пароль в безопасный хэш
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword проверяет пароль на совпадение с хэшем
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
