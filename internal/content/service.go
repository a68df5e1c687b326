package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/metrics"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
)

const metricsSource = "content"

type repository interface {
	GetContent(ctx context.Context) (*models.HomepageContent, error)
	SeedContent(ctx context.Context, content *models.HomepageContent) error
	UpdateSection(ctx context.Context, section enums.ContentSection, value any) error
	ListOffers(ctx context.Context) ([]models.Offer, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	OfferSlugTaken(ctx context.Context, slug string, excluding uuid.UUID) (bool, error)
	CreateOffer(ctx context.Context, offer *models.Offer) error
	UpdateOffer(ctx context.Context, offer *models.Offer) error
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

type contentKeyer interface {
	ContentKey() string
}

// OfferView is the storefront shape of a promotion, whichever collection it
// came from.
type OfferView struct {
	Slug     string          `json:"slug"`
	Title    i18n.Text       `json:"title"`
	Subtitle i18n.Text       `json:"subtitle"`
	Image    string          `json:"image"`
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
}

// Service owns the homepage document and the offers surface.
type Service interface {
	Load(ctx context.Context) (*models.HomepageContent, bool, error)
	UpdateSection(ctx context.Context, section enums.ContentSection, payload json.RawMessage) (*models.HomepageContent, error)
	ActiveOffers(ctx context.Context) ([]OfferView, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
	CreateOffer(ctx context.Context, input OfferInput) (*models.Offer, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, input OfferInput) (*models.Offer, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

type service struct {
	mu     sync.Mutex
	repo   repository
	mirror redis.Mirror
	keyer  contentKeyer

	logg    *logger.Logger
	metrics *metrics.RefreshMetrics
	now     func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo    repository
	Mirror  redis.Mirror
	Keyer   contentKeyer
	Logger  *logger.Logger
	Metrics *metrics.RefreshMetrics
	Now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	if params.Mirror == nil {
		return nil, fmt.Errorf("redis mirror required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("content keyer required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		mirror:  params.Mirror,
		keyer:   params.Keyer,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Now,
	}, nil
}

// Load returns the homepage document, creating it from bundled defaults the
// first time anything asks. On a database failure the Redis mirror serves a
// stale copy; only with neither does the call fail.
func (s *service) Load(ctx context.Context) (*models.HomepageContent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.repo.GetContent(ctx)
	if err != nil {
		s.metrics.IncFailure(metricsSource)
		if mirrored := s.loadMirror(ctx); mirrored != nil {
			s.metrics.IncStaleServe(metricsSource)
			if s.logg != nil {
				s.logg.Warn(ctx, "content load failed, serving mirrored copy")
			}
			return mirrored, true, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "homepage content unavailable")
	}

	if content == nil {
		seed := defaultContent()
		if err := s.repo.SeedContent(ctx, &seed); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed homepage content")
		}
		// Re-read: a concurrent seeder may have won the upsert.
		content, err = s.repo.GetContent(ctx)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload homepage content")
		}
		if content == nil {
			content = &seed
		}
	}

	s.metrics.IncSuccess(metricsSource)
	s.persistMirror(ctx, content)
	return content, false, nil
}

// UpdateSection decodes and applies an edit to exactly one section, then
// returns the full refreshed document.
func (s *service) UpdateSection(ctx context.Context, section enums.ContentSection, payload json.RawMessage) (*models.HomepageContent, error) {
	if !section.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown content section %q", section))
	}

	// Materialize the row first so a section edit never races the seed.
	current, _, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	value, err := decodeSection(section, payload, current)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.repo.UpdateSection(ctx, section, value); err != nil {
		s.mu.Unlock()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content section")
	}
	s.mu.Unlock()

	content, _, err := s.Load(ctx)
	return content, err
}

func decodeSection(section enums.ContentSection, payload json.RawMessage, current *models.HomepageContent) (any, error) {
	decode := func(target any) (any, error) {
		if err := json.Unmarshal(payload, target); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s payload", section))
		}
		return target, nil
	}

	switch section {
	case enums.ContentSectionHeroBanner:
		return decode(&models.HeroBanner{})
	case enums.ContentSectionFeaturedBrands:
		return decode(&models.BrandTiles{})
	case enums.ContentSectionOffers:
		return decode(&models.EmbeddedOffers{})
	case enums.ContentSectionMarqueeBrands:
		return decode(&models.MarqueeBrands{})
	case enums.ContentSectionSettings:
		// The payload merges over the stored settings, so toggling dark
		// mode alone does not have to restate the default language.
		settings := current.Settings
		if _, err := decode(&settings); err != nil {
			return nil, err
		}
		if !settings.DefaultLanguage.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown language %q", settings.DefaultLanguage))
		}
		return &settings, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown content section %q", section))
	}
}

// ActiveOffers resolves the storefront promotion strip. Homepage-embedded
// offers take precedence; the standalone collection is consulted only when
// the homepage carries none, and a failure there falls back to the embedded
// list rather than erroring.
func (s *service) ActiveOffers(ctx context.Context) ([]OfferView, error) {
	content, _, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	if len(content.Offers) > 0 {
		return embeddedViews(content.Offers), nil
	}

	offers, err := s.repo.ListOffers(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "standalone offers unavailable, using homepage offers")
		}
		return embeddedViews(content.Offers), nil
	}

	now := s.now()
	views := []OfferView{}
	for _, offer := range offers {
		if !offer.CurrentlyActive(now) {
			continue
		}
		views = append(views, OfferView{
			Slug:     offer.Slug,
			Title:    offer.Title,
			Subtitle: offer.Subtitle,
			Image:    offer.Image,
			OldPrice: offer.OldPrice,
			NewPrice: offer.NewPrice,
		})
	}
	return views, nil
}

func embeddedViews(offers models.EmbeddedOffers) []OfferView {
	views := make([]OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, OfferView(offer))
	}
	return views
}

// ListOffers returns the whole standalone collection for the console.
func (s *service) ListOffers(ctx context.Context) ([]models.Offer, error) {
	offers, err := s.repo.ListOffers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return offers, nil
}

// OfferInput is the console payload for offer create and update. NewPrice
// above OldPrice passes validation; markup is an editorial decision.
type OfferInput struct {
	Slug        string          `json:"slug"`
	Title       i18n.Text       `json:"title"`
	Subtitle    i18n.Text       `json:"subtitle"`
	Description i18n.Text       `json:"description"`
	Image       string          `json:"image"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
	StartsAt    *time.Time      `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at"`
	IsActive    bool            `json:"is_active"`
}

func (in *OfferInput) validate() error {
	if strings.TrimSpace(in.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer slug is required")
	}
	if in.Title.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer title is required in at least one language")
	}
	if in.OldPrice.Sign() < 0 || in.NewPrice.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer prices must not be negative")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer cannot end before it starts")
	}
	return nil
}

func (in *OfferInput) apply(offer *models.Offer) {
	offer.Slug = strings.TrimSpace(in.Slug)
	offer.Title = in.Title
	offer.Subtitle = in.Subtitle
	offer.Description = in.Description
	offer.Image = in.Image
	offer.OldPrice = in.OldPrice
	offer.NewPrice = in.NewPrice
	offer.StartsAt = in.StartsAt
	offer.EndsAt = in.EndsAt
	offer.IsActive = in.IsActive
}

// CreateOffer inserts a standalone offer.
func (s *service) CreateOffer(ctx context.Context, input OfferInput) (*models.Offer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	taken, err := s.repo.OfferSlugTaken(ctx, strings.TrimSpace(input.Slug), uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check offer slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("offer slug %q already in use", input.Slug))
	}

	offer := &models.Offer{}
	input.apply(offer)
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return offer, nil
}

// UpdateOffer rewrites a standalone offer.
func (s *service) UpdateOffer(ctx context.Context, id uuid.UUID, input OfferInput) (*models.Offer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	taken, err := s.repo.OfferSlugTaken(ctx, strings.TrimSpace(input.Slug), id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check offer slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("offer slug %q already in use", input.Slug))
	}

	input.apply(offer)
	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}
	return offer, nil
}

// DeleteOffer removes a standalone offer.
func (s *service) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}
	return nil
}

func (s *service) loadMirror(ctx context.Context) *models.HomepageContent {
	raw, err := s.mirror.Get(ctx, s.keyer.ContentKey())
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "loading content mirror failed")
		}
		return nil
	}
	var content models.HomepageContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "content mirror is corrupt, discarding")
		}
		return nil
	}
	return &content
}

func (s *service) persistMirror(ctx context.Context, content *models.HomepageContent) {
	payload, err := json.Marshal(content)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "encoding content mirror failed")
		}
		return
	}
	if err := s.mirror.Set(ctx, s.keyer.ContentKey(), payload, 0); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "persisting content mirror failed")
	}
}
