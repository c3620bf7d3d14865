package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pg := &pgconn.PgError{Code: "23505", ConstraintName: "orders_stripe_session_id_key"}

	if !IsUniqueViolation(pg, "") {
		t.Fatal("expected unique violation for 23505")
	}
	if !IsUniqueViolation(pg, "orders_stripe_session_id_key") {
		t.Fatal("expected constraint-scoped match")
	}
	if IsUniqueViolation(pg, "cart_items_user_product_variant_key") {
		t.Fatal("unexpected match for different constraint")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "42P01"}, "") {
		t.Fatal("undefined table is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
	if !IsUniqueViolation(errors.New("duplicate key value violates unique constraint"), "") {
		t.Fatal("expected fallback message match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: cart_items.user_id"), "") {
		t.Fatal("expected sqlite message match")
	}
}

func TestIsUndefinedTable(t *testing.T) {
	if !IsUndefinedTable(&pgconn.PgError{Code: "42P01"}) {
		t.Fatal("expected undefined table for 42P01")
	}
	if IsUndefinedTable(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not undefined table")
	}
	if !IsUndefinedTable(errors.New(`relation "cart_items" does not exist`)) {
		t.Fatal("expected fallback message match")
	}
	if !IsUndefinedTable(errors.New("no such table: cart_items")) {
		t.Fatal("expected sqlite message match")
	}
	if IsUndefinedTable(nil) {
		t.Fatal("nil error must not match")
	}
}
