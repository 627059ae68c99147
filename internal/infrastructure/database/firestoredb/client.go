package firestoredb

import (
	"context"
	"fmt"

	"loan-desk/internal/config"

	"cloud.google.com/go/firestore"
)

const (
	CollectionLoanAccount = "loanAccount"
	CollectionCustomer    = "customer"
	CollectionCounters    = "counters"

	AccountNumberCounterDoc = "accountNumberCounter"
	lastAccountNumberField  = "lastAccountNumber"
)

// NewClient opens a client for the configured project and database.
// FIRESTORE_EMULATOR_HOST is honoured by the SDK.
func NewClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}
