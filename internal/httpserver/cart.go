package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"levelup-cart/internal/domain"
	cartsvc "levelup-cart/internal/service/cart"
)

// CartService is the slice of the cart service the handlers use.
type CartService interface {
	GetOrCreateActiveCart(ctx context.Context, userID int64, discountEligible bool) (*cartsvc.CartView, error)
	AddItem(ctx context.Context, userID int64, in cartsvc.AddItemInput, discountEligible bool) (*cartsvc.CartView, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*cartsvc.CartView, error)
	RemoveItem(ctx context.Context, itemID string) (*cartsvc.CartView, error)
	ClearCart(ctx context.Context, userID int64) error
	CloseCart(ctx context.Context, userID int64) error
	GetTotals(ctx context.Context, userID int64) (*cartsvc.TotalsSummary, error)
}

type addItemRequest struct {
	ProductID   int64           `json:"productId" binding:"required"`
	ProductName string          `json:"productName" binding:"required,max=200"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func getCartHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		view, err := svc.GetOrCreateActiveCart(c.Request.Context(), userID, eligibleQuery(c))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func addItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.UnitPrice.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unitPrice must be positive"})
			return
		}
		view, err := svc.AddItem(c.Request.Context(), userID, cartsvc.AddItemInput{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			UnitPrice:   req.UnitPrice,
			Quantity:    req.Quantity,
		}, eligibleQuery(c))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func updateItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		view, err := svc.UpdateItemQuantity(c.Request.Context(), c.Param("itemId"), req.Quantity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func removeItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.RemoveItem(c.Request.Context(), c.Param("itemId"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func clearCartHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		if err := svc.ClearCart(c.Request.Context(), userID); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func closeCartHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		if err := svc.CloseCart(c.Request.Context(), userID); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func totalsHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		summary, err := svc.GetTotals(c.Request.Context(), userID)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return userID, true
}

func eligibleQuery(c *gin.Context) bool {
	eligible, _ := strconv.ParseBool(c.DefaultQuery("eligible", "false"))
	return eligible
}

// writeError translates the core error taxonomy into HTTP statuses.
// Anything outside the taxonomy is an infrastructure fault.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
