package dto

import "github.com/unclebandit/customer-service/internal/model"

// CustomerDTO is the customer representation exchanged over the API.
type CustomerDTO struct {
	CustomerID  int64  `json:"customerId,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// CustomerResponse is one page of customers plus the total row count.
type CustomerResponse struct {
	Content       []CustomerDTO `json:"content"`
	PageNumber    int           `json:"pageNumber"`
	PageSize      int           `json:"pageSize"`
	TotalElements int64         `json:"totalElements"`
}

// ToCustomer builds an unsaved entity; any customerId on the input is ignored.
func ToCustomer(d CustomerDTO) model.Customer {
	return model.Customer{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
	}
}

func FromCustomer(c model.Customer) CustomerDTO {
	return CustomerDTO{
		CustomerID:  c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}

// ApplyTo overwrites the mutable fields of c. The id is left untouched.
func ApplyTo(c *model.Customer, d CustomerDTO) {
	c.FirstName = d.FirstName
	c.LastName = d.LastName
	c.Email = d.Email
	c.PhoneNumber = d.PhoneNumber
}
