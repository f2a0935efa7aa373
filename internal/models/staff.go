package models

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BusinessID uuid.UUID  `json:"business_id" db:"business_id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Phone      *string    `json:"phone" db:"phone"`
	Position   string     `json:"position" db:"position"`
	HireDate   time.Time  `json:"hire_date" db:"hire_date"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
