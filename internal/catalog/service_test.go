package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

type fakeRepo struct {
	products  []models.Product
	listErr   error
	listCalls int
}

func (r *fakeRepo) ListAll(context.Context) ([]models.Product, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	for i := range r.products {
		if r.products[i].Slug == slug {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) SlugTaken(_ context.Context, slug string, excluding uuid.UUID) (bool, error) {
	for i := range r.products {
		if r.products[i].Slug == slug && r.products[i].ID != excluding {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Create(_ context.Context, product *models.Product) error {
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	r.products = append(r.products, *product)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, product *models.Product) error {
	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = *product
			return nil
		}
	}
	return fmt.Errorf("product %s not found", product.ID)
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeMirror struct {
	values map[string]string
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{values: map[string]string{}}
}

func (m *fakeMirror) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *fakeMirror) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte value, got %T", value)
	}
	m.values[key] = string(raw)
	return nil
}

func (m *fakeMirror) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) CatalogSnapshotKey() string { return "mn:catalog:snapshot" }

type fakeSigner struct {
	lastObject string
}

func (s *fakeSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	s.lastObject = object
	return fmt.Sprintf("https://storage.example.com/%s/%s?sig=abc", bucket, object), nil
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		SnapshotTTL:       time.Hour,
		NewArrivalWindow:  30 * 24 * time.Hour,
		LowStockThreshold: 10,
		RelatedLimit:      8,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, mirror *fakeMirror, signer *fakeSigner) Service {
	t.Helper()
	params := ServiceParams{
		Repo:    repo,
		Mirror:  mirror,
		Keyer:   fakeKeyer{},
		Catalog: testCatalogConfig(),
		GCS:     config.GCSConfig{BucketName: "boutique-media", UploadURLExpiry: 15 * time.Minute},
	}
	if signer != nil {
		params.Signer = signer
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validInput(slug string) ProductInput {
	return ProductInput{
		Slug:          slug,
		Name:          i18n.Text{En: "Oud Imperial", Ar: "عود إمبراطوري"},
		Description:   i18n.Text{En: "Deep resinous oud"},
		Brand:         "Maison Noor",
		Category:      "oriental",
		Price:         decimal.NewFromInt(280),
		Size:          "100ml",
		Concentration: enums.ConcentrationExtrait,
		InStock:       true,
		StockQuantity: 40,
	}
}

func TestProductsServesFromMemoryWithinTTL(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)
	ctx := context.Background()

	first, stale, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("first Products: %v", err)
	}
	if stale {
		t.Fatal("fresh fetch must not be stale")
	}

	second, _, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("second Products: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one database read, got %d", repo.listCalls)
	}
	if len(first) != len(second) {
		t.Fatalf("cached list diverged: %d vs %d", len(first), len(second))
	}
}

func TestFetchAllFallsBackToSnapshotOnFailure(t *testing.T) {
	mirror := newFakeMirror()
	ctx := context.Background()

	// A healthy run leaves a durable snapshot behind.
	healthy := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, healthy, mirror, nil)
	if _, _, err := svc.FetchAll(ctx); err != nil {
		t.Fatalf("seed FetchAll: %v", err)
	}

	// A fresh service whose database is down serves that snapshot, flagged stale.
	broken := &fakeRepo{listErr: errors.New("connection refused")}
	svc = newTestService(t, broken, mirror, nil)

	products, stale, err := svc.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll with snapshot: %v", err)
	}
	if !stale {
		t.Fatal("snapshot fallback must be flagged stale")
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 snapshot products, got %d", len(products))
	}
}

func TestFetchAllHardErrorWithoutSnapshot(t *testing.T) {
	broken := &fakeRepo{listErr: errors.New("connection refused")}
	svc := newTestService(t, broken, newFakeMirror(), nil)

	_, _, err := svc.FetchAll(context.Background())
	if err == nil {
		t.Fatal("expected hard error with neither database nor snapshot")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror(), nil)

	_, err := svc.GetBySlug(context.Background(), "no-such-slug")
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)

	_, err := svc.Create(context.Background(), validInput("oud-royal"))
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror(), nil)
	ctx := context.Background()

	cases := map[string]func(*ProductInput){
		"negative price":      func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) },
		"missing slug":        func(in *ProductInput) { in.Slug = "" },
		"missing name":        func(in *ProductInput) { in.Name = i18n.Text{} },
		"bad concentration":   func(in *ProductInput) { in.Concentration = "cologne-ish" },
		"negative stock":      func(in *ProductInput) { in.StockQuantity = -3 },
		"missing brand":       func(in *ProductInput) { in.Brand = "" },
	}
	for name, mutate := range cases {
		in := validInput("oud-imperial")
		mutate(&in)
		_, err := svc.Create(ctx, in)
		var coded *pkgerrors.Error
		if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestCreateRefreshesCache(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)
	ctx := context.Background()

	if _, _, err := svc.Products(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	created, err := svc.Create(ctx, validInput("oud-imperial"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("created product has no id")
	}

	products, _, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("Products after create: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("expected new product visible without restart, got %d products", len(products))
	}
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror(), nil)

	_, err := svc.Update(context.Background(), uuid.New(), validInput("oud-imperial"))
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateAllowsKeepingOwnSlug(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)

	anchor := repo.products[0]
	in := validInput(anchor.Slug)
	in.Price = decimal.NewFromInt(350)

	updated, err := svc.Update(context.Background(), anchor.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Price.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected price 350, got %s", updated.Price)
	}
}

func TestDeleteRemovesProduct(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)
	ctx := context.Background()

	if err := svc.Delete(ctx, repo.products[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	products, _, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("Products after delete: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products after delete, got %d", len(products))
	}
}

func TestRelatedToUsesConfiguredLimit(t *testing.T) {
	repo := &fakeRepo{products: fixtureProducts(time.Now())}
	svc := newTestService(t, repo, newFakeMirror(), nil)

	related, err := svc.RelatedTo(context.Background(), repo.products[0].ID, 0)
	if err != nil {
		t.Fatalf("RelatedTo: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected 2 related products, got %d", len(related))
	}
	for _, p := range related {
		if p.ID == repo.products[0].ID {
			t.Fatal("related list must exclude the anchor product")
		}
	}
}

func TestImageUploadURL(t *testing.T) {
	signer := &fakeSigner{}
	svc := newTestService(t, &fakeRepo{}, newFakeMirror(), signer)
	ctx := context.Background()

	url, err := svc.ImageUploadURL(ctx, "bottle.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("ImageUploadURL: %v", err)
	}
	if !strings.Contains(url, "boutique-media") {
		t.Fatalf("expected bucket in url, got %s", url)
	}
	if !strings.HasPrefix(signer.lastObject, "media/products/") || !strings.HasSuffix(signer.lastObject, "-bottle.jpg") {
		t.Fatalf("unexpected object name %s", signer.lastObject)
	}

	// Path components in the filename must not escape the media prefix.
	if _, err := svc.ImageUploadURL(ctx, "../secrets.txt", "text/plain"); err != nil {
		t.Fatalf("sanitized filename should still sign: %v", err)
	}
	if strings.Contains(signer.lastObject, "..") {
		t.Fatalf("object name must be sanitized, got %s", signer.lastObject)
	}
}

func TestImageUploadURLWithoutSigner(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror(), nil)

	_, err := svc.ImageUploadURL(context.Background(), "bottle.jpg", "image/jpeg")
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
