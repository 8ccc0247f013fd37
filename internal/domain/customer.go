package domain

import "time"

// Customer is a registered buyer. TaxID never changes after creation.
type Customer struct {
	ID        int64
	TaxID     TaxID
	Name      string
	Email     Email
	Phone     *Phone
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer carries the fields a repository needs to create a Customer.
type NewCustomer struct {
	TaxID   TaxID
	Name    string
	Email   Email
	Phone   *Phone
	Address *string
}

func (c *Customer) SetName(name string) { c.Name = name }
func (c *Customer) SetEmail(email Email) { c.Email = email }
func (c *Customer) SetPhone(phone *Phone) { c.Phone = phone }
func (c *Customer) SetAddress(addr *string) { c.Address = addr }
