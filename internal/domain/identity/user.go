// Package identity contains the tenant user model.
package identity

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// dummyHash is compared against when the username does not exist so that
// both failure paths spend the same bcrypt time.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5vYpSCmJ0Uu8gHdT9GYVdhiGR4Aq8ey"

// RoleAdmin may run tenant maintenance such as schema initialization
const RoleAdmin = "admin"

// User is a row of the tenant usuarios table
type User struct {
	ID           int64      `gorm:"column:id;primaryKey" json:"id"`
	Username     string     `gorm:"column:username" json:"username"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	Name         string     `gorm:"column:nombre" json:"nombre"`
	Email        string     `gorm:"column:email" json:"email"`
	Role         string     `gorm:"column:rol" json:"rol"`
	BranchID     *int64     `gorm:"column:sucursal_id" json:"sucursal_id,omitempty"`
	Active       bool       `gorm:"column:activo" json:"activo"`
	LastLoginAt  *time.Time `gorm:"column:ultimo_acceso" json:"ultimo_acceso,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the tenant table name
func (User) TableName() string {
	return "usuarios"
}

// VerifyPassword reports whether password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HashPassword returns a bcrypt hash suitable for usuarios.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// BurnPasswordCheck performs a bcrypt comparison whose result is ignored
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}

// UserRepository reads tenant users
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	// FindByUsername returns shared.ErrNotFound when no row matches
	FindByUsername(ctx context.Context, username string) (*User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
