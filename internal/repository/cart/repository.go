package cart

import (
	"context"

	"levelup-cart/internal/domain"
)

// Repository is the store boundary for the cart aggregate. Save writes
// the whole aggregate (cart row plus item inserts, updates and deletes)
// in a single transaction.
type Repository interface {
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	FindItem(ctx context.Context, itemID string) (*domain.Item, error)
	Save(ctx context.Context, cart *domain.Cart) error
}
