package types

import (
	"time"

	"github.com/google/uuid"
)

// Address is a Brazilian postal address attached to a customer.
type Address struct {
	ID           uuid.UUID `json:"id"`
	Cep          string    `json:"cep"` // 8 digits, no separator.
	Number       string    `json:"number"`
	Complement   *string   `json:"complement,omitempty"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"` // 2-letter UF code.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateAddressParams carries the fields accepted on address create.
type CreateAddressParams struct {
	Cep          string  `json:"cep"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement,omitempty"`
	Street       string  `json:"street"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
}

// UpdateAddressParams defines the fields allowed for partial address updates.
type UpdateAddressParams struct {
	Cep          *string `json:"cep,omitempty"`
	Number       *string `json:"number,omitempty"`
	Complement   *string `json:"complement,omitempty"`
	Street       *string `json:"street,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
}
