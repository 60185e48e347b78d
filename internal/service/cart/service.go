package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"levelup-cart/internal/domain"
	cartrepo "levelup-cart/internal/repository/cart"
)

// Service implements the cart operations. Every mutating operation goes
// through Repository.Save, which commits the aggregate atomically.
type Service struct {
	repo        cartRepo
	discountPct int64
}

type cartRepo interface {
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	FindItem(ctx context.Context, itemID string) (*domain.Item, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

// New builds a Service. discountPct is the configured percentage granted
// to discount-eligible users at cart creation.
func New(repo cartrepo.Repository, discountPct int64) *Service {
	return &Service{repo: repo, discountPct: discountPct}
}

type AddItemInput struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// CartView combines the persisted total with a freshly derived
// subtotal/discount breakdown.
type CartView struct {
	ID             string          `json:"id"`
	UserID         int64           `json:"userId"`
	CreatedAt      time.Time       `json:"createdAt"`
	Status         string          `json:"status"`
	DiscountPct    decimal.Decimal `json:"discountPct"`
	Items          []ItemView      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
}

type ItemView struct {
	ID          string          `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type TotalsSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountPct    decimal.Decimal `json:"discountPct"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
}

// GetOrCreateActiveCart returns the user's active cart, creating one if
// none exists. An existing cart with a zero discount is upgraded once
// when the user turns out to be eligible; a non-zero discount is never
// changed again.
func (s *Service) GetOrCreateActiveCart(ctx context.Context, userID int64, discountEligible bool) (*CartView, error) {
	cart, err := s.activeCart(ctx, userID, discountEligible)
	if err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// AddItem adds a product to the user's active cart, creating the cart if
// needed. Quantities merge when the product is already in the cart.
func (s *Service) AddItem(ctx context.Context, userID int64, in AddItemInput, discountEligible bool) (*CartView, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	cart, err := s.activeCart(ctx, userID, discountEligible)
	if err != nil {
		return nil, err
	}
	cart.AddItem(in.ProductID, in.ProductName, in.UnitPrice, in.Quantity)
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// UpdateItemQuantity replaces an item's quantity and recomputes the
// owning cart's total.
func (s *Service) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	cart, err := s.cartOfItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := cart.SetItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// RemoveItem deletes an item from its cart and recomputes the total.
func (s *Service) RemoveItem(ctx context.Context, itemID string) (*CartView, error) {
	cart, err := s.cartOfItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// ClearCart removes every item from the user's active cart. The cart
// shell stays active.
func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	cart.Clear()
	return s.repo.Save(ctx, cart)
}

// CloseCart moves the user's active cart to closed. There is no way
// back; a second call fails with ErrNotFound because the lookup only
// sees active carts.
func (s *Service) CloseCart(ctx context.Context, userID int64) error {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	cart.Close()
	return s.repo.Save(ctx, cart)
}

// GetTotals computes the totals summary for the user's active cart
// without mutating stored state.
func (s *Service) GetTotals(ctx context.Context, userID int64) (*TotalsSummary, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subtotal := cart.Subtotal()
	discount := cart.DiscountAmount()
	return &TotalsSummary{
		Subtotal:       subtotal,
		DiscountPct:    cart.DiscountPct,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		ItemCount:      len(cart.Items),
	}, nil
}

func (s *Service) activeCart(ctx context.Context, userID int64, discountEligible bool) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		pct := int64(0)
		if discountEligible {
			pct = s.discountPct
		}
		cart = domain.NewCart(userID, pct)
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}
	// One-time upgrade for carts created before the user was eligible.
	if discountEligible && cart.DiscountPct.IsZero() {
		cart.DiscountPct = decimal.NewFromInt(s.discountPct)
		cart.Recalculate()
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *Service) cartOfItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, item.CartID)
}

func viewOf(cart *domain.Cart) *CartView {
	items := make([]ItemView, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, ItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return &CartView{
		ID:             cart.ID,
		UserID:         cart.UserID,
		CreatedAt:      cart.CreatedAt,
		Status:         cart.Status,
		DiscountPct:    cart.DiscountPct,
		Items:          items,
		Subtotal:       cart.Subtotal(),
		DiscountAmount: cart.DiscountAmount(),
		Total:          cart.Total,
		ItemCount:      len(cart.Items),
	}
}
