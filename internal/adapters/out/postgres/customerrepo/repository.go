package customerrepo

import (
	"context"

	"orderflow/internal/core/domain/model/customer"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements ports.CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM customer repository. db may be a transaction.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Upsert inserts the customer or merges it into the existing row with the same
// UUID in a single statement. Blank incoming values keep what is stored. The
// generated id comes back through RETURNING on both paths.
func (r *GormCustomerRepository) Upsert(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dto := fromDomain(c)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "uuid"}},
			DoUpdates: clause.Assignments(map[string]any{
				"email": gorm.Expr("COALESCE(NULLIF(excluded.email, ''), customers.email)"),
				"name":  gorm.Expr("COALESCE(NULLIF(excluded.name, ''), customers.name)"),
				"phone": gorm.Expr("COALESCE(NULLIF(excluded.phone, ''), customers.phone)"),
			}),
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	return c.AssignID(dto.ID)
}
