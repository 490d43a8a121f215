package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is a log-oriented view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
}

// Dump flattens err for structured logging. Postgres details are taken from
// whichever driver error sits in the chain.
func Dump(err error) ErrorDump {
	var d ErrorDump
	if err == nil {
		return d
	}
	d.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", cur, cur))
	}
	d.fillPostgres(err)
	return d
}

func (d *ErrorDump) fillPostgres(err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode, d.PGConstraint, d.PGTable, d.PGDetail = pgErr.Code, pgErr.ConstraintName, pgErr.TableName, pgErr.Detail
		return
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode, d.PGConstraint, d.PGTable, d.PGDetail = string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Detail
	}
}

// Fields returns the non-empty dump values keyed for the request logger.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	for key, val := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_constraint": d.PGConstraint,
		"pg_table":      d.PGTable,
		"pg_detail":     d.PGDetail,
	} {
		if val != "" {
			fields[key] = val
		}
	}
	return fields
}
