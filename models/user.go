// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognized by the API. Installers work jobs in the field;
// operations verifies and closes them.
const (
	RoleAdmin      = "admin"
	RoleInstaller  = "installer"
	RoleOperations = "operations"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"            json:"id"`
	Name         string    `gorm:"size:100;not null"               json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"   json:"email"`
	Phone        string    `gorm:"size:15;uniqueIndex;not null"    json:"phone"`
	PasswordHash string    `gorm:"size:255;not null"               json:"-"`
	Role         string    `gorm:"size:30;not null;default:installer" json:"role"`
	IsActive     bool      `gorm:"default:true"                    json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
