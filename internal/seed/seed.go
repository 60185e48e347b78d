package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"levelup-cart/internal/domain"
	cartrepo "levelup-cart/internal/repository/cart"
)

type itemSeed struct {
	ProductID int64
	Name      string
	UnitPrice string
	Quantity  int
}

type cartSeed struct {
	UserID      int64
	DiscountPct int64
	Items       []itemSeed
}

// Apply inserts demo carts for manual testing. Users that already have
// an active cart are left alone, so reruns are safe.
func Apply(ctx context.Context, repo cartrepo.Repository) error {
	seeds := []cartSeed{
		{
			UserID: 1,
			Items: []itemSeed{
				{ProductID: 10, Name: "Demo T-Shirt", UnitPrice: "19.99", Quantity: 2},
				{ProductID: 11, Name: "Demo Mug", UnitPrice: "12.99", Quantity: 1},
			},
		},
		{
			UserID:      2,
			DiscountPct: 20,
			Items: []itemSeed{
				{ProductID: 20, Name: "Demo Poster", UnitPrice: "9.50", Quantity: 3},
			},
		},
	}

	for _, s := range seeds {
		if err := seedCart(ctx, repo, s); err != nil {
			return fmt.Errorf("seed cart for user %d: %w", s.UserID, err)
		}
	}
	return nil
}

func seedCart(ctx context.Context, repo cartrepo.Repository, s cartSeed) error {
	_, err := repo.GetActiveByUser(ctx, s.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	cart := domain.NewCart(s.UserID, s.DiscountPct)
	for _, it := range s.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return fmt.Errorf("parse price %q: %w", it.UnitPrice, err)
		}
		cart.AddItem(it.ProductID, it.Name, price, it.Quantity)
	}
	return repo.Save(ctx, cart)
}
