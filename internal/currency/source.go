package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// RateSource produces a fresh rate table from a remote provider.
type RateSource interface {
	Fetch(ctx context.Context) (*RateTable, error)
}

// HTTPRateSource fetches rates from a JSON endpoint shaped like
// {"base":"USD","rates":{"AED":"3.6725",...}}.
type HTTPRateSource struct {
	client *http.Client
	url    string
	now    func() time.Time
}

// NewHTTPRateSource builds a source against the given endpoint.
func NewHTTPRateSource(url string, timeout time.Duration) (*HTTPRateSource, error) {
	if url == "" {
		return nil, fmt.Errorf("rates url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRateSource{
		client: &http.Client{Timeout: timeout},
		url:    url,
		now:    time.Now,
	}, nil
}

func (s *HTTPRateSource) Fetch(ctx context.Context) (*RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint returned %s", resp.Status)
	}

	var payload struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding rates payload: %w", err)
	}
	if payload.Base == "" || len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates payload missing base or rates")
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for code, raw := range payload.Rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("rate for %s is not a decimal: %w", code, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		rates[code] = rate
	}

	return &RateTable{Base: payload.Base, Rates: rates, FetchedAt: s.now()}, nil
}

// StaticRateSource serves the bundled seed table. Deployments without a
// remote provider run on it permanently.
type StaticRateSource struct {
	now func() time.Time
}

// NewStaticRateSource builds the offline source.
func NewStaticRateSource() *StaticRateSource {
	return &StaticRateSource{now: time.Now}
}

func (s *StaticRateSource) Fetch(context.Context) (*RateTable, error) {
	return seedTable(s.now()), nil
}
