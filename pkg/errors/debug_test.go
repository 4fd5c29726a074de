package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpCollectsPgxFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_guest_users_open_pair", TableName: "guest_users"}
	err := Wrap(CodeStoreWrite, fmt.Errorf("insert guest: %w", pgErr), "persist order")

	d := Dump(err)
	if d.Code != CodeStoreWrite {
		t.Fatalf("expected code %s got %s", CodeStoreWrite, d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "uq_guest_users_open_pair" || d.PGTable != "guest_users" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) < 3 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}

func TestSQLStateFromPq(t *testing.T) {
	err := fmt.Errorf("query: %w", &pq.Error{Code: "40001"})
	if got := SQLState(err); got != "40001" {
		t.Fatalf("expected 40001 got %q", got)
	}
	if got := SQLState(stdErrors.New("plain")); got != "" {
		t.Fatalf("expected empty state got %q", got)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected zero dump, got %+v", d)
	}
}
