package kernel

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating a zero UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromName")

// customerNamespace scopes name-based UUIDs derived from customer e-mail addresses.
var customerNamespace = uuid.MustParse("3f6c2a0e-5d1b-4b8e-9c47-2f1d8e6a9b10")

// UUID is an immutable identifier value object wrapping github.com/google/uuid.
// The zero value is invalid.
//
// Example:
//
//	id, err := kernel.UUIDFromString(req.Customer.UUID)
//	if err != nil {
//	    id = kernel.UUIDFromName(req.Customer.Email)
//	}
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) UUID.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses the canonical, braced, urn or hyphen-less forms.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", fmt.Errorf("invalid UUID format: %w", err))
	}
	if id == uuid.Nil {
		return UUID{}, ErrUUIDIsNotConstructed
	}
	return UUID{id: id}, nil
}

// UUIDFromName derives a stable (version 5) UUID from a name. Case and surrounding
// whitespace are ignored so the same e-mail always maps to the same customer.
//
// Example:
//
//	a := kernel.UUIDFromName("Jane@Example.com ")
//	b := kernel.UUIDFromName("jane@example.com")
//	a.IsEqual(b) // true
func UUIDFromName(name string) UUID {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return UUID{id: uuid.NewSHA1(customerNamespace, []byte(normalized))}
}

// String returns the canonical hyphenated form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google/uuid value.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both identifiers hold the same value.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate returns ErrUUIDIsNotConstructed for the zero value.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
