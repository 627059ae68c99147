package customer

import "strings"

const UnknownName = "Unknown"

// Customer is the read-only owner record a loan account points at.
type Customer struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
}

// Unknown is the placeholder used when a loan's owner cannot be resolved.
func Unknown(customerID int64) Customer {
	return Customer{CustomerID: customerID, Name: UnknownName}
}

func (c Customer) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return UnknownName
	}
	return c.Name
}
