package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// captureTx records the SQL applyFieldPatch generates. Only Exec is used;
// the embedded interface covers the rest of pgx.Tx.
type captureTx struct {
	pgx.Tx
	queries []string
}

func (c *captureTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.queries = append(c.queries, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func TestApplyFieldPatchSignatureResetOwnsStatus(t *testing.T) {
	status := "accepted"
	patch := FieldPatch{QuoteStatus: &status, ResetSignature: true}

	tx := &captureTx{}
	if err := applyFieldPatch(context.Background(), tx, uuid.New(), uuid.New(), patch); err != nil {
		t.Fatalf("applyFieldPatch returned error: %v", err)
	}
	if len(tx.queries) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(tx.queries))
	}

	query := tx.queries[0]
	if n := strings.Count(query, "quote_status"); n != 1 {
		t.Fatalf("quote_status assigned %d times in one UPDATE: %s", n, query)
	}
	if !strings.Contains(query, "quote_status = 'draft'") {
		t.Fatalf("expected the reset to force draft status, got: %s", query)
	}
	if !strings.Contains(query, "signed_at = NULL") {
		t.Fatalf("expected signed_at cleared, got: %s", query)
	}
}

func TestApplyFieldPatchStatusWithoutReset(t *testing.T) {
	status := "declined"
	patch := FieldPatch{QuoteStatus: &status}

	tx := &captureTx{}
	if err := applyFieldPatch(context.Background(), tx, uuid.New(), uuid.New(), patch); err != nil {
		t.Fatalf("applyFieldPatch returned error: %v", err)
	}

	query := tx.queries[0]
	if !strings.Contains(query, "quote_status = $3") {
		t.Fatalf("expected requested status applied, got: %s", query)
	}
	if strings.Contains(query, "'draft'") {
		t.Fatalf("unexpected status reset without signature reset: %s", query)
	}
}
