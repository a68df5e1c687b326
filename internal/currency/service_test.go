package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	redislib "github.com/redis/go-redis/v9"
)

type fakeSource struct {
	calls int
	table *RateTable
	err   error
}

func (f *fakeSource) Fetch(context.Context) (*RateTable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

type fakeMirror struct {
	values map[string]string
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{values: map[string]string{}}
}

func (f *fakeMirror) Get(_ context.Context, key string) (string, error) {
	raw, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return raw, nil
}

func (f *fakeMirror) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = string(value.([]byte))
	return nil
}

func (f *fakeMirror) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) RatesSnapshotKey() string { return "mn:rates:snapshot" }

func testTable(fetchedAt time.Time) *RateTable {
	return &RateTable{
		Base: BaseCode,
		Rates: map[string]decimal.Decimal{
			"AED": decimal.RequireFromString("3.67"),
			"EUR": decimal.RequireFromString("0.92"),
			"KWD": decimal.RequireFromString("0.31"),
		},
		FetchedAt: fetchedAt,
	}
}

func newTestService(t *testing.T, source RateSource, mirror *fakeMirror, now func() time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Source:          source,
		Mirror:          mirror,
		Keyer:           fakeKeyer{},
		StalenessWindow: time.Hour,
		Now:             now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetRatesSecondCallInsideWindowSkipsRemote(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{table: testTable(now)}
	svc := newTestService(t, source, newFakeMirror(), func() time.Time { return now })

	first, stale, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if stale {
		t.Fatal("fresh fetch must not be stale")
	}

	second, stale, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if stale {
		t.Fatal("cached table must not be stale")
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 remote call, got %d", source.calls)
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Fatal("expected identical table on second call")
	}
	for code, rate := range first.Rates {
		if !second.Rates[code].Equal(rate) {
			t.Fatalf("rate %s differs between calls", code)
		}
	}
}

func TestGetRatesRefetchesAfterWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{table: testTable(current)}
	svc := newTestService(t, source, newFakeMirror(), func() time.Time { return current })

	if _, _, err := svc.GetRates(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	current = current.Add(2 * time.Hour)
	source.table = testTable(current)
	if _, _, err := svc.GetRates(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch after window, got %d calls", source.calls)
	}
}

func TestGetRatesServesStaleOnFetchFailure(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{table: testTable(current)}
	svc := newTestService(t, source, newFakeMirror(), func() time.Time { return current })

	if _, _, err := svc.GetRates(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	current = current.Add(2 * time.Hour)
	source.err = errors.New("provider down")

	table, stale, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("stale serve must not error: %v", err)
	}
	if !stale {
		t.Fatal("expected stale flag after failed refresh")
	}
	if _, ok := table.Rate("AED"); !ok {
		t.Fatal("stale table lost its rates")
	}
}

func TestGetRatesHardErrorWithoutAnyCache(t *testing.T) {
	source := &fakeSource{err: errors.New("provider down")}
	svc := newTestService(t, source, newFakeMirror(), time.Now)

	_, _, err := svc.GetRates(context.Background())
	if err == nil {
		t.Fatal("expected hard error with no cache")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetRatesHydratesFromSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mirror := newFakeMirror()

	// First service run persists the snapshot.
	source := &fakeSource{table: testTable(now)}
	svc := newTestService(t, source, mirror, func() time.Time { return now })
	if _, _, err := svc.GetRates(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	// A restarted service with a dead provider serves the snapshot stale-free
	// while it is inside the window.
	restarted := newTestService(t, &fakeSource{err: errors.New("provider down")}, mirror, func() time.Time { return now.Add(30 * time.Minute) })
	table, stale, err := restarted.GetRates(context.Background())
	if err != nil {
		t.Fatalf("snapshot hydrate: %v", err)
	}
	if stale {
		t.Fatal("in-window snapshot must not be stale")
	}
	if _, ok := table.Rate("AED"); !ok {
		t.Fatal("snapshot table lost its rates")
	}
}

func TestConvertRoundTripWithinTolerance(t *testing.T) {
	now := time.Now()
	source := &fakeSource{table: testTable(now)}
	svc := newTestService(t, source, newFakeMirror(), func() time.Time { return now })

	tolerance := decimal.RequireFromString("0.000001")
	amounts := []string{"1", "99.99", "1234.56", "0.01"}
	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		for _, code := range []string{"AED", "EUR", "KWD"} {
			converted, err := svc.Convert(context.Background(), amount, BaseCode, code)
			if err != nil {
				t.Fatalf("convert %s to %s: %v", raw, code, err)
			}
			back, err := svc.Convert(context.Background(), converted, code, BaseCode)
			if err != nil {
				t.Fatalf("convert back from %s: %v", code, err)
			}
			if back.Sub(amount).Abs().GreaterThan(tolerance) {
				t.Fatalf("round trip %s via %s drifted: got %s", raw, code, back)
			}
		}
	}
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &fakeSource{table: testTable(now)}, newFakeMirror(), func() time.Time { return now })

	_, err := svc.Convert(context.Background(), decimal.NewFromInt(10), BaseCode, "XYZ")
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormatPriceKnownAndUnknownCodes(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, &fakeSource{table: testTable(now)}, newFakeMirror(), func() time.Time { return now })

	usd := svc.FormatPrice(decimal.RequireFromString("1234.50"), "USD")
	if usd == "" {
		t.Fatal("expected formatted USD price")
	}

	// Unknown codes take the baseline locale instead of failing.
	unknown := svc.FormatPrice(decimal.RequireFromString("10"), "ZZZ")
	if unknown == "" {
		t.Fatal("expected fallback formatting for unknown code")
	}
}

func TestStaticRateSourceCoversSeedCurrencies(t *testing.T) {
	table, err := NewStaticRateSource().Fetch(context.Background())
	if err != nil {
		t.Fatalf("static fetch: %v", err)
	}
	for _, c := range SeedCurrencies() {
		if _, ok := table.Rate(c.Code); !ok {
			t.Fatalf("seed table missing %s", c.Code)
		}
	}
}
