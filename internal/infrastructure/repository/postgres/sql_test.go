package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestUniqueViolation(t *testing.T) {
	t.Run("extracts constraint from wrapped pq error", func(t *testing.T) {
		err := fmt.Errorf("insert draft pick: %w", &pq.Error{Code: "23505", Constraint: "draft_picks_game_uidx"})
		constraint, ok := uniqueViolation(err)
		if !ok {
			t.Fatalf("expected unique violation")
		}
		if constraint != "draft_picks_game_uidx" {
			t.Fatalf("unexpected constraint: %s", constraint)
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		if _, ok := uniqueViolation(&pq.Error{Code: "23503"}); ok {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores non pq errors", func(t *testing.T) {
		if _, ok := uniqueViolation(sql.ErrConnDone); ok {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get league: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(sql.ErrTxDone) {
		t.Fatalf("expected false for sql.ErrTxDone")
	}
}

func TestOptionalString(t *testing.T) {
	if got := optionalString("   "); got != nil {
		t.Fatalf("expected nil for blank, got %q", *got)
	}
	if got := optionalString(" hit "); got == nil || *got != "hit" {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestNonNilStrings(t *testing.T) {
	if got := nonNilStrings(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty array, got %#v", got)
	}
}
