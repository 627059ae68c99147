package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-desk/internal/domain/customer"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type customerDoc struct {
	CustomerID int64  `firestore:"customerId"`
	Name       string `firestore:"name"`
}

type CustomerRepository struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(client *firestore.Client, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		client: client,
		logger: logger.With(slog.String("repository", "FirestoreCustomerRepository")),
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	iter := r.client.Collection(CollectionCustomer).Where("customerId", "==", customerID).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to query customer %d: %w", customerID, err)
	}

	var doc customerDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode customer %d: %w", customerID, err)
	}
	return &customer.Customer{CustomerID: doc.CustomerID, Name: doc.Name}, nil
}
