package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is referenced by orders and conditionals; name and phone are also
// copied onto those records when they are created.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"index;not null"`
	Phone      string    `gorm:"index;not null"`
	Email      *string
	CPF        *string `gorm:"column:cpf;index"`
	Street     *string
	Number     *string
	Complement *string
	District   *string
	City       *string
	State      *string `gorm:"type:varchar(2)"`
	ZipCode    *string `gorm:"type:varchar(9)"`
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
