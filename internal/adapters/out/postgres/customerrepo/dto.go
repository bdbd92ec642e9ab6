// Package customerrepo persists customers keyed by their external UUID.
package customerrepo

import (
	"orderflow/internal/core/domain/model/customer"

	"github.com/google/uuid"
)

// CustomerDTO represents the database structure for customers.
type CustomerDTO struct {
	ID    int64     `gorm:"primaryKey;autoIncrement"`
	UUID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Email string    `gorm:"not null;default:''"`
	Name  string    `gorm:"not null;default:''"`
	Phone string    `gorm:"not null;default:''"`
}

// TableName specifies the database table name for customer entities.
func (CustomerDTO) TableName() string {
	return "customers"
}

func fromDomain(c *customer.Customer) CustomerDTO {
	return CustomerDTO{
		UUID:  c.UUID().Bytes(),
		Email: c.Email(),
		Name:  c.Name(),
		Phone: c.Phone(),
	}
}
