package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Salary column bounds: decimal(14,2) holds 12 integer digits and 2 decimals.
const (
	SalaryIntegerDigits = 12
	SalaryScale         = 2
)

func init() {
	// Salaries are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Employee is a record in the managed employee collection.
type Employee struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string          `json:"name" gorm:"size:255;not null;index"`
	Mobile    string          `json:"mobile" gorm:"size:10;not null"`
	Email     string          `json:"email" gorm:"uniqueIndex:idx_employees_email;size:255;not null"`
	Position  string          `json:"position" gorm:"size:255;not null;index"`
	Salary    decimal.Decimal `json:"salary" gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
