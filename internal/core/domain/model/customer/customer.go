// Package customer holds the Customer entity: the identity a paid order is attributed to.
package customer

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// ErrCustomerIsNotConstructed is returned for zero-value customers.
var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer constructor")

// Customer is identified externally by a UUID and internally by a storage id.
// Upserts are keyed on the UUID; blank e-mail, name or phone never overwrite
// stored values.
type Customer struct {
	id    int64
	uuid  kernel.UUID
	email string
	name  string
	phone string

	isConstructed bool
}

// NewCustomer validates the identity of a submitting customer.
//
// Example:
//
//	c, err := customer.NewCustomer(kernel.UUIDFromName(email), email, "Jane Doe", "07123456789")
func NewCustomer(id kernel.UUID, email, name, phone string) (*Customer, error) {
	c := &Customer{isConstructed: true}

	if err := errors.Join(
		c.setUUID(id),
		c.setEmail(email),
	); err != nil {
		return nil, err
	}

	c.name = strings.TrimSpace(name)
	c.phone = strings.TrimSpace(phone)
	return c, nil
}

// RestoreCustomer rebuilds a Customer loaded from storage.
func RestoreCustomer(id int64, uuid kernel.UUID, email, name, phone string) (*Customer, error) {
	c, err := NewCustomer(uuid, email, name, phone)
	if err != nil {
		return nil, err
	}
	if err = c.AssignID(id); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Customer) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomerIsNotConstructed
	}
	return nil
}

// AssignID stores the identifier produced by an upsert.
func (c *Customer) AssignID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsOutOfRangeError("customer id", id, 1, "max int64")
	}
	c.id = id
	return nil
}

func (c *Customer) ID() int64 {
	return c.id
}

func (c *Customer) UUID() kernel.UUID {
	return c.uuid
}

func (c *Customer) Email() string {
	return c.email
}

func (c *Customer) Name() string {
	return c.name
}

func (c *Customer) Phone() string {
	return c.phone
}

func (c *Customer) setUUID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.uuid = id
	return nil
}

func (c *Customer) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	if !strings.Contains(email, "@") {
		return errs.NewValueIsInvalidError("email")
	}
	c.email = email
	return nil
}
