package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-desk/internal/domain/customer"

	"github.com/redis/go-redis/v9"
)

const customerKeyPrefix = "customer:"

// CustomerCache is a read-through cache in front of a CustomerRepository.
// Redis failures degrade to the wrapped repository.
type CustomerCache struct {
	next   customer.CustomerRepository
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerCache)(nil)

func NewCustomerCache(next customer.CustomerRepository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CustomerCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CustomerCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "CustomerCache")),
	}
}

func customerKey(customerID int64) string {
	return fmt.Sprintf("%s%d", customerKeyPrefix, customerID)
}

func (c *CustomerCache) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	key := customerKey(customerID)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cust customer.Customer
		if jsonErr := json.Unmarshal([]byte(raw), &cust); jsonErr == nil {
			return &cust, nil
		}
		c.logger.WarnContext(ctx, "Discarding undecodable cached customer", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "Customer cache read failed, falling back to store", slog.String("key", key), slog.Any("error", err))
	}

	cust, err := c.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cust); err == nil {
		if err := c.client.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Failed to populate customer cache", slog.String("key", key), slog.Any("error", err))
		}
	}
	return cust, nil
}
