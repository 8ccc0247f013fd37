package customers

import (
	"time"

	"api_commerce/internal/domain"
	"api_commerce/internal/pagination"
)

// RegisterCustomerCommand creates a customer.
type RegisterCustomerCommand struct {
	TaxID   string  `json:"tax_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

type RegisterCustomerOutput struct {
	CustomerID int64 `json:"customer_id"`
}

// EditCustomerCommand updates the fields that are set. The tax id cannot
// be changed.
type EditCustomerCommand struct {
	CustomerID int64   `json:"-"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
}

type GetCustomerByTaxIDQuery struct {
	TaxID string
}

type GetCustomersQuery struct {
	Pagination pagination.Pagination
}

// CustomerView is the read model returned to callers.
type CustomerView struct {
	ID        int64     `json:"id"`
	TaxID     string    `json:"tax_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomerView(c domain.Customer) CustomerView {
	v := CustomerView{
		ID:        c.ID,
		TaxID:     c.TaxID.String(),
		Name:      c.Name,
		Email:     c.Email.String(),
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Phone != nil {
		p := c.Phone.String()
		v.Phone = &p
	}
	return v
}
