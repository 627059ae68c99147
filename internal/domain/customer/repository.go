package customer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("customer not found")

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID int64) (*Customer, error)
}
