package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

type fakeRepo struct {
	content *models.HomepageContent
	offers  []models.Offer

	contentErr error
	offersErr  error
	seedCalls  int
}

func (r *fakeRepo) GetContent(context.Context) (*models.HomepageContent, error) {
	if r.contentErr != nil {
		return nil, r.contentErr
	}
	if r.content == nil {
		return nil, nil
	}
	clone := *r.content
	return &clone, nil
}

func (r *fakeRepo) SeedContent(_ context.Context, content *models.HomepageContent) error {
	r.seedCalls++
	if r.content == nil {
		clone := *content
		r.content = &clone
	}
	return nil
}

func (r *fakeRepo) UpdateSection(_ context.Context, section enums.ContentSection, value any) error {
	if r.content == nil {
		return errors.New("no content row")
	}
	switch section {
	case enums.ContentSectionHeroBanner:
		r.content.Hero = *value.(*models.HeroBanner)
	case enums.ContentSectionFeaturedBrands:
		r.content.FeaturedBrands = *value.(*models.BrandTiles)
	case enums.ContentSectionOffers:
		r.content.Offers = *value.(*models.EmbeddedOffers)
	case enums.ContentSectionMarqueeBrands:
		r.content.MarqueeBrands = *value.(*models.MarqueeBrands)
	case enums.ContentSectionSettings:
		r.content.Settings = *value.(*models.ContentSettings)
	}
	return nil
}

func (r *fakeRepo) ListOffers(context.Context) ([]models.Offer, error) {
	if r.offersErr != nil {
		return nil, r.offersErr
	}
	out := make([]models.Offer, len(r.offers))
	copy(out, r.offers)
	return out, nil
}

func (r *fakeRepo) GetOffer(_ context.Context, id uuid.UUID) (*models.Offer, error) {
	for i := range r.offers {
		if r.offers[i].ID == id {
			clone := r.offers[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) OfferSlugTaken(_ context.Context, slug string, excluding uuid.UUID) (bool, error) {
	for i := range r.offers {
		if r.offers[i].Slug == slug && r.offers[i].ID != excluding {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateOffer(_ context.Context, offer *models.Offer) error {
	offer.ID = uuid.New()
	r.offers = append(r.offers, *offer)
	return nil
}

func (r *fakeRepo) UpdateOffer(_ context.Context, offer *models.Offer) error {
	for i := range r.offers {
		if r.offers[i].ID == offer.ID {
			r.offers[i] = *offer
			return nil
		}
	}
	return errors.New("offer not found")
}

func (r *fakeRepo) DeleteOffer(_ context.Context, id uuid.UUID) error {
	for i := range r.offers {
		if r.offers[i].ID == id {
			r.offers = append(r.offers[:i], r.offers[i+1:]...)
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
		return errors.New("expected []byte value")
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

func (fakeKeyer) ContentKey() string { return "mn:content:homepage" }

func newTestService(t *testing.T, repo *fakeRepo, mirror *fakeMirror) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Mirror: mirror, Keyer: fakeKeyer{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoadSeedsDefaultsOnce(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, newFakeMirror())
	ctx := context.Background()

	content, stale, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stale {
		t.Fatal("freshly seeded content must not be stale")
	}
	if content.Hero.Title.En == "" || content.Hero.Title.Ar == "" {
		t.Fatal("bundled hero defaults must be bilingual")
	}

	if _, _, err := svc.Load(ctx); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if repo.seedCalls != 1 {
		t.Fatalf("expected exactly one seed, got %d", repo.seedCalls)
	}
}

func TestLoadServesMirrorWhenDatabaseDown(t *testing.T) {
	mirror := newFakeMirror()
	ctx := context.Background()

	healthy := &fakeRepo{}
	svc := newTestService(t, healthy, mirror)
	if _, _, err := svc.Load(ctx); err != nil {
		t.Fatalf("seed Load: %v", err)
	}

	broken := &fakeRepo{contentErr: errors.New("connection refused")}
	svc = newTestService(t, broken, mirror)

	content, stale, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load with mirror: %v", err)
	}
	if !stale {
		t.Fatal("mirror fallback must be flagged stale")
	}
	if content.Hero.Title.En == "" {
		t.Fatal("mirrored document lost its hero section")
	}
}

func TestLoadHardErrorWithoutMirror(t *testing.T) {
	broken := &fakeRepo{contentErr: errors.New("connection refused")}
	svc := newTestService(t, broken, newFakeMirror())

	_, _, err := svc.Load(context.Background())
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUpdateSectionTouchesExactlyOneSection(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, newFakeMirror())
	ctx := context.Background()

	before, _, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	payload, _ := json.Marshal(models.HeroBanner{
		Title:   i18n.Text{En: "Autumn Collection", Ar: "مجموعة الخريف"},
		Image:   "/media/content/autumn.jpg",
		CTALink: "/products?category=oriental",
	})
	after, err := svc.UpdateSection(ctx, enums.ContentSectionHeroBanner, payload)
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	if after.Hero.Title.En != "Autumn Collection" {
		t.Fatalf("hero not updated: %+v", after.Hero)
	}
	if len(after.FeaturedBrands) != len(before.FeaturedBrands) {
		t.Fatal("featured brands must survive a hero edit")
	}
	if after.Settings != before.Settings {
		t.Fatal("settings must survive a hero edit")
	}
}

func TestUpdateSectionRejectsBadPayload(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror())
	ctx := context.Background()

	_, err := svc.UpdateSection(ctx, enums.ContentSectionHeroBanner, json.RawMessage(`{"title": 42}`))
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.UpdateSection(ctx, enums.ContentSection("footer"), json.RawMessage(`{}`))
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown section, got %v", err)
	}

	_, err = svc.UpdateSection(ctx, enums.ContentSectionSettings, json.RawMessage(`{"default_language":"fr"}`))
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown language, got %v", err)
	}
}

func TestUpdateSettingsAcceptsPartialEdit(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, newFakeMirror())
	ctx := context.Background()

	after, err := svc.UpdateSection(ctx, enums.ContentSectionSettings, json.RawMessage(`{"dark_mode":true}`))
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if !after.Settings.DarkMode {
		t.Fatal("dark mode was not enabled")
	}
	if after.Settings.DefaultLanguage != enums.LanguageEnglish {
		t.Fatalf("default language changed to %q", after.Settings.DefaultLanguage)
	}
}

func activeOffer(slug string) models.Offer {
	return models.Offer{
		ID:       uuid.New(),
		Slug:     slug,
		Title:    i18n.Text{En: "Summer Edit"},
		OldPrice: decimal.NewFromInt(200),
		NewPrice: decimal.NewFromInt(150),
		IsActive: true,
	}
}

func TestActiveOffersPrefersEmbedded(t *testing.T) {
	repo := &fakeRepo{offers: []models.Offer{activeOffer("standalone-sale")}}
	svc := newTestService(t, repo, newFakeMirror())
	ctx := context.Background()

	if _, _, err := svc.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	payload, _ := json.Marshal(models.EmbeddedOffers{{
		Slug:     "homepage-exclusive",
		Title:    i18n.Text{En: "Homepage Exclusive"},
		OldPrice: decimal.NewFromInt(300),
		NewPrice: decimal.NewFromInt(240),
	}})
	if _, err := svc.UpdateSection(ctx, enums.ContentSectionOffers, payload); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	views, err := svc.ActiveOffers(ctx)
	if err != nil {
		t.Fatalf("ActiveOffers: %v", err)
	}
	if len(views) != 1 || views[0].Slug != "homepage-exclusive" {
		t.Fatalf("embedded offers must win, got %+v", views)
	}
}

func TestActiveOffersFallsBackToStandalone(t *testing.T) {
	expired := activeOffer("last-winter")
	past := time.Now().Add(-24 * time.Hour)
	expired.EndsAt = &past

	repo := &fakeRepo{offers: []models.Offer{activeOffer("summer-edit"), expired}}
	svc := newTestService(t, repo, newFakeMirror())

	views, err := svc.ActiveOffers(context.Background())
	if err != nil {
		t.Fatalf("ActiveOffers: %v", err)
	}
	if len(views) != 1 || views[0].Slug != "summer-edit" {
		t.Fatalf("expected only the active standalone offer, got %+v", views)
	}
}

func TestActiveOffersSurvivesStandaloneFailure(t *testing.T) {
	repo := &fakeRepo{offersErr: errors.New("timeout")}
	svc := newTestService(t, repo, newFakeMirror())

	views, err := svc.ActiveOffers(context.Background())
	if err != nil {
		t.Fatalf("offers fetch failure must not error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected the empty embedded list, got %+v", views)
	}
}

func TestOfferMarkupIsAllowed(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, newFakeMirror())

	created, err := svc.CreateOffer(context.Background(), OfferInput{
		Slug:     "collectors-markup",
		Title:    i18n.Text{En: "Collector's Edition"},
		OldPrice: decimal.NewFromInt(100),
		NewPrice: decimal.NewFromInt(180),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("markup must pass validation: %v", err)
	}
	if !created.NewPrice.GreaterThan(created.OldPrice) {
		t.Fatal("markup lost in translation")
	}
}

func TestOfferValidationAndSlugConflict(t *testing.T) {
	repo := &fakeRepo{offers: []models.Offer{activeOffer("summer-edit")}}
	svc := newTestService(t, repo, newFakeMirror())
	ctx := context.Background()

	var coded *pkgerrors.Error

	_, err := svc.CreateOffer(ctx, OfferInput{Slug: "summer-edit", Title: i18n.Text{En: "Dup"}})
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = svc.CreateOffer(ctx, OfferInput{Slug: "no-title"})
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = svc.CreateOffer(ctx, OfferInput{
		Slug:     "inverted-window",
		Title:    i18n.Text{En: "Inverted"},
		StartsAt: &start,
		EndsAt:   &end,
	})
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted window, got %v", err)
	}

	err = svc.DeleteOffer(ctx, uuid.New())
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
