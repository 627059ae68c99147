package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"loan-desk/internal/config"
	"loan-desk/internal/domain/customer"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCustomerCache_FindByID(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute

	t.Run("Hit skips the store", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		repo := new(MockCustomerRepository)
		c := NewCustomerCache(repo, db, ttl, testLogger)

		redisMock.ExpectGet("customer:7").SetVal(`{"customerId":7,"name":"Kavya"}`)

		got, err := c.FindByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, &customer.Customer{CustomerID: 7, Name: "Kavya"}, got)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Miss reads through and populates", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		repo := new(MockCustomerRepository)
		c := NewCustomerCache(repo, db, ttl, testLogger)

		redisMock.ExpectGet("customer:8").RedisNil()
		repo.On("FindByID", ctx, int64(8)).Return(&customer.Customer{CustomerID: 8, Name: "Dev"}, nil).Once()
		redisMock.ExpectSet("customer:8", `{"customerId":8,"name":"Dev"}`, ttl).SetVal("OK")

		got, err := c.FindByID(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, "Dev", got.Name)
		repo.AssertExpectations(t)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Not found is not cached", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		repo := new(MockCustomerRepository)
		c := NewCustomerCache(repo, db, ttl, testLogger)

		redisMock.ExpectGet("customer:9").RedisNil()
		repo.On("FindByID", ctx, int64(9)).Return(nil, customer.ErrNotFound).Once()

		_, err := c.FindByID(ctx, 9)
		assert.ErrorIs(t, err, customer.ErrNotFound)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Redis outage falls back to the store", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		repo := new(MockCustomerRepository)
		c := NewCustomerCache(repo, db, ttl, testLogger)

		redisMock.ExpectGet("customer:10").SetErr(errors.New("connection refused"))
		repo.On("FindByID", ctx, int64(10)).Return(&customer.Customer{CustomerID: 10, Name: "Ira"}, nil).Once()
		redisMock.ExpectSet("customer:10", `{"customerId":10,"name":"Ira"}`, ttl).SetErr(errors.New("connection refused"))

		got, err := c.FindByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Ira", got.Name)
	})

	t.Run("Corrupt entry is replaced", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		repo := new(MockCustomerRepository)
		c := NewCustomerCache(repo, db, ttl, testLogger)

		redisMock.ExpectGet("customer:11").SetVal("not-json")
		repo.On("FindByID", ctx, int64(11)).Return(&customer.Customer{CustomerID: 11, Name: "Om"}, nil).Once()
		redisMock.ExpectSet("customer:11", `{"customerId":11,"name":"Om"}`, ttl).SetVal("OK")

		got, err := c.FindByID(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, "Om", got.Name)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestNewRedisClient_Disabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{Enabled: false}, testLogger)
	assert.NoError(t, err)
	assert.Nil(t, client)
}
