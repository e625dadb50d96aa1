package types

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the primary business entity: a person with a unique email and
// CPF, optionally linked one-to-one to an Address.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Cpf       string    `json:"cpf"` // 11 digits.
	Phone     *string   `json:"phone,omitempty"`
	BirthDate time.Time `json:"birth_date"`
	Age       int       `json:"age"` // Derived from BirthDate, not stored.
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeAge derives the customer's age in whole years at the given instant.
func (c *Customer) ComputeAge(now time.Time) int {
	years := now.Year() - c.BirthDate.Year()
	anniversary := c.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// CreateCustomerParams carries the fields accepted on customer create.
type CreateCustomerParams struct {
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Cpf       string               `json:"cpf"`
	Phone     *string              `json:"phone,omitempty"`
	BirthDate time.Time            `json:"birth_date"`
	Address   *CreateAddressParams `json:"address,omitempty"`
}

// UpdateCustomerParams defines the fields allowed for partial customer
// updates. A non-nil Address merges into the customer's existing address.
type UpdateCustomerParams struct {
	Name      *string              `json:"name,omitempty"`
	Email     *string              `json:"email,omitempty"`
	Cpf       *string              `json:"cpf,omitempty"`
	Phone     *string              `json:"phone,omitempty"`
	BirthDate *time.Time           `json:"birth_date,omitempty"`
	Address   *UpdateAddressParams `json:"address,omitempty"`
}
