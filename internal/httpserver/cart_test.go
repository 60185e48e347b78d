package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"levelup-cart/internal/domain"
	cartsvc "levelup-cart/internal/service/cart"
)

type stubCartService struct {
	view    *cartsvc.CartView
	summary *cartsvc.TotalsSummary
	err     error

	lastUserID   int64
	lastEligible bool
	lastItemID   string
	lastQuantity int
	lastInput    cartsvc.AddItemInput
}

func (s *stubCartService) GetOrCreateActiveCart(_ context.Context, userID int64, eligible bool) (*cartsvc.CartView, error) {
	s.lastUserID = userID
	s.lastEligible = eligible
	return s.view, s.err
}

func (s *stubCartService) AddItem(_ context.Context, userID int64, in cartsvc.AddItemInput, eligible bool) (*cartsvc.CartView, error) {
	s.lastUserID = userID
	s.lastInput = in
	s.lastEligible = eligible
	return s.view, s.err
}

func (s *stubCartService) UpdateItemQuantity(_ context.Context, itemID string, quantity int) (*cartsvc.CartView, error) {
	s.lastItemID = itemID
	s.lastQuantity = quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, itemID string) (*cartsvc.CartView, error) {
	s.lastItemID = itemID
	return s.view, s.err
}

func (s *stubCartService) ClearCart(_ context.Context, userID int64) error {
	s.lastUserID = userID
	return s.err
}

func (s *stubCartService) CloseCart(_ context.Context, userID int64) error {
	s.lastUserID = userID
	return s.err
}

func (s *stubCartService) GetTotals(_ context.Context, userID int64) (*cartsvc.TotalsSummary, error) {
	s.lastUserID = userID
	return s.summary, s.err
}

func testRouter(svc CartService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(os.Stdout, "[test] ", 0)
	return buildRouter(logger, nil, Deps{CartSvc: svc})
}

func TestGetCart_OK(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.CartView{ID: "c1", UserID: 7}}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cart/7?eligible=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.lastUserID != 7 || !svc.lastEligible {
		t.Fatalf("expected user 7 eligible, got %d %v", svc.lastUserID, svc.lastEligible)
	}
}

func TestGetCart_InvalidUserID(t *testing.T) {
	router := testRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAddItem_Created(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.CartView{ID: "c1"}}
	router := testRouter(svc)

	body := `{"productId":10,"productName":"Widget","unitPrice":9.99,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.ProductID != 10 || svc.lastInput.Quantity != 2 {
		t.Fatalf("unexpected input %+v", svc.lastInput)
	}
	if !svc.lastInput.UnitPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("expected unit price 9.99, got %s", svc.lastInput.UnitPrice)
	}
}

func TestAddItem_RejectsLongProductName(t *testing.T) {
	router := testRouter(&stubCartService{})

	name := strings.Repeat("x", 201)
	body := fmt.Sprintf(`{"productId":10,"productName":%q,"unitPrice":9.99,"quantity":2}`, name)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAddItem_RejectsNonPositivePrice(t *testing.T) {
	router := testRouter(&stubCartService{})

	body := `{"productId":10,"productName":"Widget","unitPrice":0,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAddItem_ValidationErrorMapsTo400(t *testing.T) {
	svc := &stubCartService{err: fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)}
	router := testRouter(svc)

	body := `{"productId":10,"productName":"Widget","unitPrice":9.99,"quantity":-1}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUpdateItem_NotFoundMapsTo404(t *testing.T) {
	svc := &stubCartService{err: domain.ErrNotFound}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/9999", strings.NewReader(`{"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if svc.lastItemID != "9999" {
		t.Fatalf("expected item id 9999, got %q", svc.lastItemID)
	}
}

func TestRemoveItem_OK(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.CartView{ID: "c1"}}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/i1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.lastItemID != "i1" {
		t.Fatalf("expected item id i1, got %q", svc.lastItemID)
	}
}

func TestClearCart_NoContent(t *testing.T) {
	svc := &stubCartService{}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/1/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestCloseCart_NotFoundMapsTo404(t *testing.T) {
	svc := &stubCartService{err: domain.ErrNotFound}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/1/close", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestTotals_OK(t *testing.T) {
	svc := &stubCartService{summary: &cartsvc.TotalsSummary{
		Subtotal:       decimal.RequireFromString("100.00"),
		DiscountPct:    decimal.RequireFromString("20"),
		DiscountAmount: decimal.RequireFromString("20.00"),
		Total:          decimal.RequireFromString("80.00"),
		ItemCount:      1,
	}}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cart/2/total", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var got cartsvc.TotalsSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Total.Equal(decimal.RequireFromString("80.00")) || got.ItemCount != 1 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(&stubCartService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
