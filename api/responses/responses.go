package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/maisonnoor/boutique-backend/pkg/errors"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteRead emits a read response; when the data came from a cache instead of
// the authoritative source, a warning rides along and the status stays 200.
func WriteRead(w http.ResponseWriter, data any, stale bool) {
	if !stale {
		WriteSuccess(w, data)
		return
	}
	writeJSON(w, http.StatusOK, types.WarningEnvelope{
		Data: data,
		Warning: &types.Warning{
			Code:    string(pkgerrors.CodeStaleCache),
			Message: "serving cached data; the source is temporarily unavailable",
		},
	})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		trace := pkgerrors.TraceOf(err)
		fields := map[string]any{
			"error":       trace.Message,
			"error_code":  trace.Code,
			"error_chain": trace.Chain,
		}
		if trace.Postgres != nil {
			fields["pg_code"] = trace.Postgres.Code
			fields["pg_constraint"] = trace.Postgres.Constraint
			fields["pg_detail"] = trace.Postgres.Detail
		}
		ctx = logg.WithFields(ctx, fields)
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
