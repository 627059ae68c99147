package firestoredb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"loan-desk/internal/config"
	"loan-desk/internal/domain/customer"
	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// emulatorClient returns a client bound to a fresh project on the emulator,
// so each test starts with empty collections.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set, skipping Firestore integration test")
	}

	ctx := context.Background()
	project := fmt.Sprintf("loan-desk-test-%d", time.Now().UnixNano())
	client, err := NewClient(ctx, config.FirestoreConfig{ProjectID: project})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.FirestoreConfig{})
	assert.ErrorContains(t, err, "projectID must be provided")
}

func TestAccountNumberCounter_Emulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	counter := NewAccountNumberCounter(client, testLogger)

	t.Run("Missing counter starts at one", func(t *testing.T) {
		n, err := counter.AllocateNextAccountNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Existing counter returns N+1 and persists it", func(t *testing.T) {
		ref := client.Collection(CollectionCounters).Doc(AccountNumberCounterDoc)
		_, err := ref.Set(ctx, map[string]any{lastAccountNumberField: int64(5000)})
		require.NoError(t, err)

		first, err := counter.AllocateNextAccountNumber(ctx)
		require.NoError(t, err)
		second, err := counter.AllocateNextAccountNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5001), first)
		assert.Equal(t, int64(5002), second)

		snap, err := ref.Get(ctx)
		require.NoError(t, err)
		stored, err := snap.DataAt(lastAccountNumberField)
		require.NoError(t, err)
		assert.Equal(t, int64(5002), stored)
	})

	t.Run("Concurrent allocations are unique", func(t *testing.T) {
		const workers = 8
		var (
			mu   sync.Mutex
			seen = map[int64]bool{}
			wg   sync.WaitGroup
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := counter.AllocateNextAccountNumber(ctx)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				assert.False(t, seen[n], "duplicate account number %d", n)
				seen[n] = true
			}()
		}
		wg.Wait()
		assert.Len(t, seen, workers)
	})
}

func TestLoanRepository_Emulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	repo := NewLoanRepository(client, testLogger)

	base := loan.LoanAccount{
		CustomerID:   7,
		LoanType:     loan.TypeHouse,
		LoanAmount:   100_000,
		Tenure:       1,
		InterestRate: 9.5,
		MonthlyEMI:   8768.35,
		LoanDocument: "https://storage.googleapis.com/b/uploads/loanDocument/a.pdf",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	first := base
	first.AccountNumber = 1
	createdFirst, err := repo.CreateLoanAccount(ctx, &first)
	require.NoError(t, err)
	require.NotEmpty(t, createdFirst.DocumentID)

	second := base
	second.AccountNumber = 2
	createdSecond, err := repo.CreateLoanAccount(ctx, &second)
	require.NoError(t, err)

	docID, err := repo.FindDocumentIDByAccountNumber(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, createdSecond.DocumentID, docID)

	_, err = repo.FindDocumentIDByAccountNumber(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.SetFlag(ctx, createdFirst.DocumentID, loan.FieldIsApprove, true))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].AccountNumber)

	snap, err := client.Collection(CollectionLoanAccount).Doc(createdFirst.DocumentID).Get(ctx)
	require.NoError(t, err)
	var stored loanAccountDoc
	require.NoError(t, snap.DataTo(&stored))
	assert.True(t, stored.IsApprove)
	assert.False(t, stored.IsHold)
	assert.Equal(t, int64(100_000), stored.LoanAmount)
	assert.Equal(t, 8768.35, stored.MonthlyEMI)

	err = repo.SetFlag(ctx, "does-not-exist", loan.FieldIsHold, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCustomerRepository_Emulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	repo := NewCustomerRepository(client, testLogger)

	_, _, err := client.Collection(CollectionCustomer).Add(ctx, customerDoc{CustomerID: 7, Name: "Kavya"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, &customer.Customer{CustomerID: 7, Name: "Kavya"}, got)

	_, err = repo.FindByID(ctx, 8)
	assert.ErrorIs(t, err, customer.ErrNotFound)
}
