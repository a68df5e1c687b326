package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Trace flattens an error chain into loggable fields. When a postgres
// driver error (pgx or lib/pq) sits anywhere in the chain, its
// server-side details are lifted out so one log line names the
// constraint that actually fired.
type Trace struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Chain   []string `json:"chain,omitempty"`

	Postgres *PostgresDetail `json:"postgres,omitempty"`
}

// PostgresDetail carries the server-reported parts of a postgres error.
type PostgresDetail struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// TraceOf walks the chain behind err and returns its loggable form.
func TraceOf(err error) Trace {
	if err == nil {
		return Trace{}
	}

	tr := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		tr.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		tr.Chain = append(tr.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	tr.Postgres = postgresDetail(err)
	return tr
}

func postgresDetail(err error) *PostgresDetail {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PostgresDetail{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PostgresDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
