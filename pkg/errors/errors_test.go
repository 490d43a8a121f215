package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "Validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "Authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "Access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "Resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "Resource already exists"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "State transition not allowed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "Idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "Too many requests"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "Internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "Service temporarily unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		code   Code
		status int
		msg    string
	}{
		{name: "not found", err: NotFound("Product", "p1"), code: CodeNotFound, status: http.StatusNotFound, msg: "Product p1 not found"},
		{name: "validation", err: Validation("Order must contain at least one item"), code: CodeValidation, status: http.StatusBadRequest, msg: "Order must contain at least one item"},
		{name: "forbidden", err: Forbidden("nope"), code: CodeForbidden, status: http.StatusForbidden, msg: "nope"},
		{name: "conflict", err: Conflict("taken"), code: CodeConflict, status: http.StatusConflict, msg: "taken"},
		{name: "unauthorized", err: Unauthorized("log in"), code: CodeUnauthorized, status: http.StatusUnauthorized, msg: "log in"},
		{name: "rate limited", err: RateLimited("slow down"), code: CodeRateLimit, status: http.StatusTooManyRequests, msg: "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code() != tt.code {
				t.Fatalf("expected code %s got %s", tt.code, tt.err.Code())
			}
			if MetadataFor(tt.err.Code()).HTTPStatus != tt.status {
				t.Fatalf("expected status %d", tt.status)
			}
			if tt.err.Message() != tt.msg {
				t.Fatalf("expected message %q got %q", tt.msg, tt.err.Message())
			}
		})
	}
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	inner := NotFound("Order", "o1")
	outer := fmt.Errorf("load: %w", inner)
	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("expected wrapped not found to match")
	}
	if IsCode(outer, CodeConflict) {
		t.Fatalf("did not expect conflict match")
	}
	if IsCode(stdErrors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(fmt.Errorf("wrap: %w", Forbidden("no"))); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}
	if got := HTTPStatus(stdErrors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for untyped errors, got %d", got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("connection reset"), "load cart")
	if got := err.Error(); got != "INTERNAL_ERROR: load cart: connection reset" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := New(CodeNotFound, "Order not found").Error(); got != "NOT_FOUND: Order not found" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestDumpFields(t *testing.T) {
	base := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users"}
	err := Wrap(CodeConflict, base, "insert user")

	dump := Dump(err)
	if dump.PGCode != "23505" || dump.PGConstraint != "users_email_key" {
		t.Fatalf("postgres details missing: %+v", dump)
	}
	fields := dump.Fields()
	if fields["error_code"] != CodeConflict {
		t.Fatalf("expected error_code field, got %v", fields["error_code"])
	}
	if _, ok := fields["pg_detail"]; ok {
		t.Fatalf("empty pg_detail should be omitted")
	}
	if got := Dump(nil); got.TopMessage != "" || got.Chain != nil {
		t.Fatalf("expected zero dump for nil, got %+v", got)
	}
}
