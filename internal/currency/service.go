package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/metrics"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
)

const metricsSource = "rates"

// localeByCode keys formatting locales off currency codes. Unknown codes fall
// back to the baseline en-US.
var localeByCode = map[string]string{
	"USD": "en-US",
	"EUR": "de-DE",
	"GBP": "en-GB",
	"AED": "ar-AE",
	"SAR": "ar-SA",
	"QAR": "ar-QA",
	"KWD": "ar-KW",
	"BHD": "ar-BH",
	"OMR": "ar-OM",
	"EGP": "ar-EG",
}

const baselineLocale = "en-US"

type ratesKeyer interface {
	RatesSnapshotKey() string
}

// Service exposes the conversion table operations.
type Service interface {
	GetRates(ctx context.Context) (*RateTable, bool, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	FormatPrice(amount decimal.Decimal, code string) string
	Currencies() []Currency
}

type service struct {
	mu     sync.Mutex
	cached *RateTable

	source  RateSource
	mirror  redis.Mirror
	keyer   ratesKeyer
	window  time.Duration
	logg    *logger.Logger
	metrics *metrics.RefreshMetrics
	now     func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Source          RateSource
	Mirror          redis.Mirror
	Keyer           ratesKeyer
	StalenessWindow time.Duration
	Logger          *logger.Logger
	Metrics         *metrics.RefreshMetrics
	Now             func() time.Time
}

// NewService builds the currency service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("rate source required")
	}
	if params.Mirror == nil {
		return nil, fmt.Errorf("redis mirror required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("rates keyer required")
	}
	if params.StalenessWindow <= 0 {
		params.StalenessWindow = time.Hour
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		source:  params.Source,
		mirror:  params.Mirror,
		keyer:   params.Keyer,
		window:  params.StalenessWindow,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Now,
	}, nil
}

// GetRates returns the cached table when it is inside the staleness window.
// Otherwise it refetches; a failed refetch with any cached table serves that
// table with the stale flag set, and a failed refetch with nothing cached is a
// hard dependency error.
func (s *service) GetRates(ctx context.Context) (*RateTable, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if s.cached == nil {
		if snapshot := s.loadSnapshot(ctx); snapshot != nil {
			s.cached = snapshot
		}
	}

	if s.cached != nil && s.cached.Age(now) < s.window {
		return s.cached, false, nil
	}

	started := now
	fresh, err := s.source.Fetch(ctx)
	if err == nil {
		s.metrics.ObserveDuration(metricsSource, s.now().Sub(started))
		s.metrics.IncSuccess(metricsSource)
		s.cached = fresh
		s.persistSnapshot(ctx, fresh)
		return fresh, false, nil
	}

	s.metrics.IncFailure(metricsSource)

	if s.cached != nil {
		s.metrics.IncStaleServe(metricsSource)
		if s.logg != nil {
			s.logg.Warn(ctx, "rates refresh failed, serving stale table")
		}
		return s.cached, true, nil
	}

	return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "exchange rates unavailable")
}

// Convert computes amount * rate[to] / rate[from] against the current table.
func (s *service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	table, _, err := s.GetRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	rateFrom, ok := table.Rate(from)
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", from))
	}
	rateTo, ok := table.Rate(to)
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", to))
	}

	return amount.Mul(rateTo).Div(rateFrom), nil
}

// FormatPrice renders the amount with the locale conventions of the currency.
func (s *service) FormatPrice(amount decimal.Decimal, code string) string {
	locale, ok := localeByCode[code]
	if !ok {
		locale = baselineLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		unit = xcurrency.USD
	}

	value, _ := amount.Float64()
	return message.NewPrinter(tag).Sprint(xcurrency.Symbol(unit.Amount(value)))
}

// Currencies lists the storefront display currencies.
func (s *service) Currencies() []Currency {
	return SeedCurrencies()
}

func (s *service) loadSnapshot(ctx context.Context) *RateTable {
	raw, err := s.mirror.Get(ctx, s.keyer.RatesSnapshotKey())
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "loading rates snapshot failed")
		}
		return nil
	}
	var table RateTable
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "rates snapshot is corrupt, discarding")
		}
		return nil
	}
	return &table
}

func (s *service) persistSnapshot(ctx context.Context, table *RateTable) {
	payload, err := json.Marshal(table)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "encoding rates snapshot failed")
		}
		return
	}
	if err := s.mirror.Set(ctx, s.keyer.RatesSnapshotKey(), payload, 0); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "persisting rates snapshot failed")
	}
}
