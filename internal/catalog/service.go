package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/metrics"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
)

const metricsSource = "catalog"

var validate = validator.New()

type repository interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugTaken(ctx context.Context, slug string, excluding uuid.UUID) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogKeyer interface {
	CatalogSnapshotKey() string
}

// signer mints upload URLs for product imagery.
type signer interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

// snapshot is the durable fallback copy of the catalog.
type snapshot struct {
	Products  []models.Product `json:"products"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Service exposes catalog reads, pure filtering, and admin CRUD.
type Service interface {
	FetchAll(ctx context.Context) ([]models.Product, bool, error)
	Products(ctx context.Context) ([]models.Product, bool, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Filter(ctx context.Context, opts FilterOptions) ([]models.Product, bool, error)
	Search(ctx context.Context, term string) ([]models.Product, bool, error)
	RelatedTo(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error)
	Create(ctx context.Context, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ImageUploadURL(ctx context.Context, filename, contentType string) (string, error)
}

type service struct {
	mu        sync.Mutex
	cached    []models.Product
	fetchedAt time.Time

	repo    repository
	mirror  redis.Mirror
	keyer   catalogKeyer
	signer  signer
	cfg     config.CatalogConfig
	gcs     config.GCSConfig
	logg    *logger.Logger
	metrics *metrics.RefreshMetrics
	now     func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo    repository
	Mirror  redis.Mirror
	Keyer   catalogKeyer
	Signer  signer
	Catalog config.CatalogConfig
	GCS     config.GCSConfig
	Logger  *logger.Logger
	Metrics *metrics.RefreshMetrics
	Now     func() time.Time
}

// NewService builds the catalog service backed by the provided stack. The
// signer is optional; without it image upload URLs are unavailable.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Mirror == nil {
		return nil, fmt.Errorf("redis mirror required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("catalog keyer required")
	}
	if params.Catalog.SnapshotTTL <= 0 {
		params.Catalog.SnapshotTTL = 24 * time.Hour
	}
	if params.Catalog.NewArrivalWindow <= 0 {
		params.Catalog.NewArrivalWindow = 30 * 24 * time.Hour
	}
	if params.Catalog.RelatedLimit <= 0 {
		params.Catalog.RelatedLimit = 8
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		mirror:  params.Mirror,
		keyer:   params.Keyer,
		signer:  params.Signer,
		cfg:     params.Catalog,
		gcs:     params.GCS,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Now,
	}, nil
}

// FetchAll replaces the in-memory list from the database. On success the
// timestamped snapshot is mirrored; on failure the latest snapshot is served
// with the stale flag, and with no snapshot at all the error is hard.
func (s *service) FetchAll(ctx context.Context) ([]models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

// Products serves the cached list, refreshing when it has aged out.
func (s *service) Products(ctx context.Context) ([]models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.cfg.SnapshotTTL {
		return s.cached, false, nil
	}
	return s.refresh(ctx)
}

func (s *service) refresh(ctx context.Context) ([]models.Product, bool, error) {
	started := s.now()
	products, err := s.repo.ListAll(ctx)
	if err == nil {
		s.metrics.ObserveDuration(metricsSource, s.now().Sub(started))
		s.metrics.IncSuccess(metricsSource)
		s.cached = products
		s.fetchedAt = s.now()
		s.persistSnapshot(ctx, snapshot{Products: products, FetchedAt: s.fetchedAt})
		return products, false, nil
	}

	s.metrics.IncFailure(metricsSource)

	if snap := s.loadSnapshot(ctx); snap != nil {
		s.metrics.IncStaleServe(metricsSource)
		if s.logg != nil {
			s.logg.Warn(ctx, "catalog refresh failed, serving durable snapshot")
		}
		s.cached = snap.Products
		s.fetchedAt = snap.FetchedAt
		return snap.Products, true, nil
	}

	s.cached = nil
	return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
}

// GetBySlug reads one product straight from the database.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// Filter runs the pure predicate pipeline over the cached list.
func (s *service) Filter(ctx context.Context, opts FilterOptions) ([]models.Product, bool, error) {
	products, stale, err := s.Products(ctx)
	if err != nil {
		return nil, false, err
	}
	return Filter(products, opts, s.now(), s.cfg.NewArrivalWindow), stale, nil
}

// Search runs the substring match over the cached list.
func (s *service) Search(ctx context.Context, term string) ([]models.Product, bool, error) {
	products, stale, err := s.Products(ctx)
	if err != nil {
		return nil, false, err
	}
	return Search(products, term), stale, nil
}

// RelatedTo returns neighbors by category or brand in catalog order.
func (s *service) RelatedTo(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > s.cfg.RelatedLimit {
		limit = s.cfg.RelatedLimit
	}

	products, _, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	var anchor *models.Product
	for i := range products {
		if products[i].ID == productID {
			anchor = &products[i]
			break
		}
	}
	if anchor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return RelatedTo(products, anchor, limit), nil
}

// ProductInput is the admin-console payload for create and update.
type ProductInput struct {
	Slug          string              `json:"slug" validate:"required"`
	Name          i18n.Text           `json:"name"`
	Description   i18n.Text           `json:"description"`
	Brand         string              `json:"brand" validate:"required"`
	Category      string              `json:"category" validate:"required"`
	Price         decimal.Decimal     `json:"price"`
	Size          string              `json:"size" validate:"required"`
	Concentration enums.Concentration `json:"concentration"`
	TopNotes      []string            `json:"top_notes"`
	HeartNotes    []string            `json:"heart_notes"`
	BaseNotes     []string            `json:"base_notes"`
	Images        []string            `json:"images"`
	IsBestseller  bool                `json:"is_bestseller"`
	IsFeatured    bool                `json:"is_featured"`
	InStock       bool                `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
}

func (in *ProductInput) validateInput() error {
	if err := validate.Struct(in); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product payload")
	}
	if in.Name.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required in at least one language")
	}
	if in.Price.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if !in.Concentration.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown concentration %q", in.Concentration))
	}
	if in.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}
	return nil
}

// Create inserts a product after slug-uniqueness and payload validation.
func (s *service) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := input.validateInput(); err != nil {
		return nil, err
	}

	taken, err := s.repo.SlugTaken(ctx, input.Slug, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already in use", input.Slug))
	}

	product := &models.Product{}
	input.apply(product)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.invalidate(ctx)
	return product, nil
}

// Update rewrites an existing product, preserving slug uniqueness.
func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := input.validateInput(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	taken, err := s.repo.SlugTaken(ctx, input.Slug, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("slug %q already in use", input.Slug))
	}

	input.apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.invalidate(ctx)
	return product, nil
}

// Delete removes a product from the catalog.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	s.invalidate(ctx)
	return nil
}

// ImageUploadURL mints a signed PUT URL for product imagery.
func (s *service) ImageUploadURL(_ context.Context, filename, contentType string) (string, error) {
	if s.signer == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "media storage is not configured")
	}
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	if contentType == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}

	object := path.Join("media", "products", fmt.Sprintf("%s-%s", uuid.NewString(), filename))
	url, err := s.signer.SignedURL(s.gcs.BucketName, object, contentType, s.gcs.UploadURLExpiry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint upload url")
	}
	return url, nil
}

func (in *ProductInput) apply(product *models.Product) {
	product.Slug = strings.TrimSpace(in.Slug)
	product.Name = in.Name
	product.Description = in.Description
	product.Brand = in.Brand
	product.Category = in.Category
	product.Price = in.Price
	product.Size = in.Size
	product.Concentration = in.Concentration
	product.TopNotes = in.TopNotes
	product.HeartNotes = in.HeartNotes
	product.BaseNotes = in.BaseNotes
	product.Images = in.Images
	product.IsBestseller = in.IsBestseller
	product.IsFeatured = in.IsFeatured
	product.InStock = in.InStock
	product.StockQuantity = in.StockQuantity
}

// invalidate refreshes the cache and mirror after an admin mutation.
func (s *service) invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.refresh(ctx); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog refresh after mutation failed")
	}
}

func (s *service) loadSnapshot(ctx context.Context) *snapshot {
	raw, err := s.mirror.Get(ctx, s.keyer.CatalogSnapshotKey())
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "loading catalog snapshot failed")
		}
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "catalog snapshot is corrupt, discarding")
		}
		return nil
	}
	return &snap
}

func (s *service) persistSnapshot(ctx context.Context, snap snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "encoding catalog snapshot failed")
		}
		return
	}
	if err := s.mirror.Set(ctx, s.keyer.CatalogSnapshotKey(), payload, 0); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "persisting catalog snapshot failed")
	}
}
