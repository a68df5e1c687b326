package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/maisonnoor/boutique-backend/api/responses"
	currencysvc "github.com/maisonnoor/boutique-backend/internal/currency"
	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// CurrencyList returns the supported currency set with display metadata.
func CurrencyList(svc currencysvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"currencies": svc.Currencies()})
	}
}

// CurrencyRates serves the live conversion table, flagged stale when the
// upstream source is down and the cached snapshot is being used.
func CurrencyRates(svc currencysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, stale, err := svc.GetRates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRead(w, table, stale)
	}
}

// CurrencyConvert converts an amount between two supported currencies and
// returns both the raw figure and its formatted display string.
func CurrencyConvert(svc currencysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		amount, err := decimal.NewFromString(q.Get("amount"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
		to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
		if from == "" || to == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to currencies are required"))
			return
		}

		converted, err := svc.Convert(r.Context(), amount, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"amount":    converted,
			"currency":  to,
			"formatted": svc.FormatPrice(converted, to),
		})
	}
}
