package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// StoreFailure classifies a database error by what it means for the storefront.
type StoreFailure string

const (
	StoreFailureNone          StoreFailure = ""
	StoreFailureDuplicate     StoreFailure = "duplicate"
	StoreFailureStockGuard    StoreFailure = "stock_guard"
	StoreFailureCheck         StoreFailure = "check"
	StoreFailureMissingParent StoreFailure = "missing_parent"
	StoreFailureContention    StoreFailure = "contention"
	StoreFailureOther         StoreFailure = "other"
)

// StoreError is the driver-independent view of a database failure.
type StoreError struct {
	Failure    StoreFailure `json:"failure"`
	SQLState   string       `json:"sql_state,omitempty"`
	Table      string       `json:"table,omitempty"`
	Column     string       `json:"column,omitempty"`
	Constraint string       `json:"constraint,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// ErrorDump is what the response boundary logs for a failed request.
type ErrorDump struct {
	TopMessage string      `json:"top_message"`
	Code       Code        `json:"code,omitempty"`
	Chain      []string    `json:"chain,omitempty"`
	ProductID  any         `json:"product_id,omitempty"`
	Store      *StoreError `json:"store,omitempty"`
}

// Dump walks err and pulls out the typed code, the product a stock error
// refers to, and any postgres or sqlite failure underneath.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		if details, ok := typed.Details().(map[string]any); ok {
			d.ProductID = details["product_id"]
		}
	}

	d.Store = storeErrorOf(err)
	return d
}

// Fields flattens the dump into log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.ProductID != nil {
		fields["product_id"] = d.ProductID
	}
	if s := d.Store; s != nil {
		fields["store_failure"] = s.Failure
		fields["sql_state"] = s.SQLState
		fields["store_table"] = s.Table
		fields["store_column"] = s.Column
		fields["store_constraint"] = s.Constraint
		fields["store_detail"] = s.Detail
	}
	return fields
}

func storeErrorOf(err error) *StoreError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return classify(&StoreError{
			SQLState:   pgxErr.Code,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		})
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classify(&StoreError{
			SQLState:   string(pqErr.Code),
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		})
	}

	// sqlite (local mode and tests) only reports constraint failures in text.
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return &StoreError{Failure: StoreFailureDuplicate, Message: msg}
		case strings.Contains(msg, "CHECK constraint failed"):
			failure := StoreFailureCheck
			if strings.Contains(msg, "stock") {
				failure = StoreFailureStockGuard
			}
			return &StoreError{Failure: failure, Message: msg}
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return &StoreError{Failure: StoreFailureMissingParent, Message: msg}
		case strings.Contains(msg, "database is locked"):
			return &StoreError{Failure: StoreFailureContention, Message: msg}
		}
	}
	return nil
}

func classify(s *StoreError) *StoreError {
	switch s.SQLState {
	case "23505":
		s.Failure = StoreFailureDuplicate
	case "23514":
		s.Failure = StoreFailureCheck
		if s.Table == "products" || strings.Contains(s.Constraint, "stock") {
			s.Failure = StoreFailureStockGuard
		}
	case "23503":
		s.Failure = StoreFailureMissingParent
	case "40001", "40P01", "55P03":
		s.Failure = StoreFailureContention
	default:
		s.Failure = StoreFailureOther
	}
	return s
}
