package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInsufficient, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeEmptyCart, status: http.StatusBadRequest, publicMsg: "cart is empty"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
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
	if meta := MetadataFor("SOMETHING_UNKNOWN"); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeInternal, cause, "create order")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("Wrap did not preserve cause")
	}
	if Wrap(CodeInternal, nil, "x").Unwrap() != nil {
		t.Fatal("Wrap(nil) should not carry a cause")
	}

	outer := fmt.Errorf("checkout: %w", wrapped)
	if !IsCode(outer, CodeInternal) {
		t.Fatal("IsCode should find the typed error through fmt wrapping")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatal("IsCode matched the wrong code")
	}
	if IsCode(cause, CodeInternal) {
		t.Fatal("IsCode matched an untyped error")
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	err := InsufficientStock(9, "Headphones", 3, 5)
	if err.Code() != CodeInsufficient {
		t.Fatalf("unexpected code %s", err.Code())
	}
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", err.Details())
	}
	if details["available"] != 3 || details["requested"] != 5 || details["product_name"] != "Headphones" {
		t.Fatalf("unexpected details %+v", details)
	}
	if err.Message() != "insufficient stock for Headphones: only 3 available" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestDumpClassifiesPostgresFailures(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key value"}
	dump := Dump(Wrap(CodeConflict, pgErr, "create user"))
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.Store == nil || dump.Store.Failure != StoreFailureDuplicate {
		t.Fatalf("expected duplicate failure, got %+v", dump.Store)
	}
	if dump.Store.SQLState != "23505" || dump.Store.Constraint != "users_email_key" || dump.Store.Table != "users" {
		t.Fatalf("unexpected store fields %+v", dump.Store)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two entries in chain, got %v", dump.Chain)
	}

	pqErr := &pq.Error{Code: "23514", Constraint: "products_stock_check", Table: "products"}
	dump = Dump(fmt.Errorf("decrement: %w", pqErr))
	if dump.Store == nil || dump.Store.Failure != StoreFailureStockGuard || dump.Store.SQLState != "23514" {
		t.Fatalf("expected stock guard failure, got %+v", dump.Store)
	}

	dump = Dump(&pgconn.PgError{Code: "40001"})
	if dump.Store.Failure != StoreFailureContention {
		t.Fatalf("expected contention, got %+v", dump.Store)
	}

	if Dump(nil).TopMessage != "" {
		t.Fatal("expected empty dump for nil error")
	}
}

func TestDumpClassifiesSQLiteMessages(t *testing.T) {
	cases := map[string]StoreFailure{
		"UNIQUE constraint failed: users.email":  StoreFailureDuplicate,
		"CHECK constraint failed: stock >= 0":    StoreFailureStockGuard,
		"CHECK constraint failed: quantity >= 1": StoreFailureCheck,
		"FOREIGN KEY constraint failed":          StoreFailureMissingParent,
		"database is locked (5) (SQLITE_BUSY)":   StoreFailureContention,
	}
	for msg, want := range cases {
		dump := Dump(Wrap(CodeInternal, stdErrors.New(msg), "write"))
		if dump.Store == nil || dump.Store.Failure != want {
			t.Fatalf("%q: expected %s, got %+v", msg, want, dump.Store)
		}
	}

	if Dump(stdErrors.New("plain")).Store != nil {
		t.Fatal("expected no store error for a plain error")
	}
}

func TestDumpFieldsCarryStockContext(t *testing.T) {
	fields := Dump(InsufficientStock(7, "Lamp", 1, 3)).Fields()
	if fields["product_id"] != uint(7) {
		t.Fatalf("expected product_id 7, got %v", fields["product_id"])
	}
	if fields["error_code"] != CodeInsufficient {
		t.Fatalf("unexpected code %v", fields["error_code"])
	}
	if _, ok := fields["store_failure"]; ok {
		t.Fatalf("expected no store fields, got %+v", fields)
	}
}
