package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/api/middleware"
	cartsvc "github.com/maisonnoor/boutique-backend/internal/cart"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

type stubCartService struct {
	cart       *cartsvc.Cart
	addCalls   int
	clearCalls int
	lastQty    int
}

func (s *stubCartService) Get(_ context.Context, ownerID string) (*cartsvc.Cart, cartsvc.Totals, error) {
	if s.cart == nil {
		s.cart = &cartsvc.Cart{OwnerID: ownerID, Lines: []cartsvc.Line{}}
	}
	return s.cart, cartsvc.Totals{}, nil
}

func (s *stubCartService) AddItem(_ context.Context, ownerID string, product *models.Product, quantity int) (*cartsvc.Cart, error) {
	s.addCalls++
	s.lastQty = quantity
	s.cart = &cartsvc.Cart{OwnerID: ownerID, Lines: []cartsvc.Line{{
		ProductID: product.ID,
		Slug:      product.Slug,
		Quantity:  quantity,
	}}}
	return s.cart, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, ownerID string, _ uuid.UUID) (*cartsvc.Cart, error) {
	return &cartsvc.Cart{OwnerID: ownerID}, nil
}

func (s *stubCartService) SetQuantity(_ context.Context, ownerID string, _ uuid.UUID, quantity int) (*cartsvc.Cart, error) {
	s.lastQty = quantity
	return &cartsvc.Cart{OwnerID: ownerID}, nil
}

func (s *stubCartService) Clear(context.Context, string) (bool, error) {
	s.clearCalls++
	return true, nil
}

func (s *stubCartService) ComputeTotals(*cartsvc.Cart) cartsvc.Totals { return cartsvc.Totals{} }

type stubCatalogService struct {
	product models.Product
}

func (s stubCatalogService) FetchAll(context.Context) ([]models.Product, bool, error) {
	return []models.Product{s.product}, false, nil
}

func (s stubCatalogService) Products(context.Context) ([]models.Product, bool, error) {
	return []models.Product{s.product}, false, nil
}

func (s stubCatalogService) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	if slug != s.product.Slug {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p := s.product
	return &p, nil
}

func (s stubCatalogService) Filter(context.Context, catalogsvc.FilterOptions) ([]models.Product, bool, error) {
	return []models.Product{s.product}, false, nil
}

func (s stubCatalogService) Search(context.Context, string) ([]models.Product, bool, error) {
	return []models.Product{s.product}, false, nil
}

func (stubCatalogService) RelatedTo(context.Context, uuid.UUID, int) ([]models.Product, error) {
	return nil, nil
}

func (s stubCatalogService) Create(context.Context, catalogsvc.ProductInput) (*models.Product, error) {
	p := s.product
	return &p, nil
}

func (s stubCatalogService) Update(context.Context, uuid.UUID, catalogsvc.ProductInput) (*models.Product, error) {
	p := s.product
	return &p, nil
}

func (stubCatalogService) Delete(context.Context, uuid.UUID) error { return nil }

func (stubCatalogService) ImageUploadURL(context.Context, string, string) (string, error) {
	return "https://storage.example.com/upload", nil
}

func testProduct() models.Product {
	return models.Product{
		ID:    uuid.New(),
		Slug:  "oud-royal",
		Name:  i18n.Text{En: "Royal Oud", Ar: "عود ملكي"},
		Brand: "Maison Noor",
		Price: decimal.NewFromInt(320),
	}
}

func withOwner(req *http.Request, ownerID string) *http.Request {
	return req.WithContext(middleware.WithOwnerID(req.Context(), ownerID))
}

func TestCartFetchMissingOwner(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddResolvesSlugAndDefaultsQuantity(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAdd(svc, stubCatalogService{product: testProduct()}, nil)

	body := strings.NewReader(`{"slug":"oud-royal"}`)
	req := withOwner(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body), "guest-42")
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.addCalls != 1 {
		t.Fatalf("expected one add call, got %d", svc.addCalls)
	}
	if svc.lastQty != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", svc.lastQty)
	}

	var envelope struct {
		Data struct {
			ItemCount int `json:"item_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 1 {
		t.Fatalf("expected item_count 1, got %d", envelope.Data.ItemCount)
	}
}

func TestCartAddUnknownSlug(t *testing.T) {
	handler := CartAdd(&stubCartService{}, stubCatalogService{product: testProduct()}, nil)

	body := strings.NewReader(`{"slug":"no-such-perfume"}`)
	req := withOwner(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body), "guest-42")
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartClearDemandsConfirmation(t *testing.T) {
	svc := &stubCartService{}
	handler := CartClear(svc, nil)

	req := withOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), "guest-42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm got %d", resp.Code)
	}
	if svc.clearCalls != 0 {
		t.Fatalf("clear must not run without confirmation")
	}

	req = withOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/cart?confirm=true", nil), "guest-42")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm got %d", resp.Code)
	}
	if svc.clearCalls != 1 {
		t.Fatalf("expected one clear call, got %d", svc.clearCalls)
	}
}
