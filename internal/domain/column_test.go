package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPreferredColumnPrefersSystemOverNonSystem(t *testing.T) {
	system := ImportableColumn{ID: uuid.New(), Name: "qty", IsSystem: true}
	plain := ImportableColumn{ID: uuid.New(), Name: "qty_copy", IsSystem: false}

	best, ok := PreferredColumn([]ImportableColumn{plain, system})
	if !ok {
		t.Fatalf("expected a match")
	}
	if best.ID != system.ID {
		t.Fatalf("expected system column to win, got %s", best.Name)
	}
}

func TestPreferredColumnPrefersNonTemporary(t *testing.T) {
	temp := ImportableColumn{ID: uuid.New(), Name: "price", IsTemp: true}
	durable := ImportableColumn{ID: uuid.New(), Name: "price_list", IsTemp: false}

	best, _ := PreferredColumn([]ImportableColumn{temp, durable})
	if best.ID != durable.ID {
		t.Fatalf("expected non-temporary column to win, got %s", best.Name)
	}
}

func TestPreferredColumnStableTieBreak(t *testing.T) {
	earlier := ImportableColumn{ID: uuid.New(), CreatedAt: time.Unix(100, 0)}
	later := ImportableColumn{ID: uuid.New(), CreatedAt: time.Unix(200, 0)}

	best, _ := PreferredColumn([]ImportableColumn{later, earlier})
	if best.ID != earlier.ID {
		t.Fatalf("expected earliest column to win the tie-break")
	}

	if _, ok := PreferredColumn(nil); ok {
		t.Fatalf("expected no match for empty candidate set")
	}
}

func TestNewTemporaryColumn(t *testing.T) {
	column := NewTemporaryColumn("  Unit Price (USD)  ")

	if !column.IsTemp {
		t.Fatalf("expected temporary flag to be set")
	}
	if column.IsSystem {
		t.Fatalf("temporary columns must not be system columns")
	}
	if column.Name != "unit_price_usd" {
		t.Fatalf("unexpected slug: %s", column.Name)
	}
	if column.Header != "  Unit Price (USD)  " {
		t.Fatalf("header label must keep the original text")
	}
	if len(column.Aliases) != 1 || column.Aliases[0].Alias != "unit price (usd)" {
		t.Fatalf("unexpected aliases: %+v", column.Aliases)
	}
}

func TestNormalizeAlias(t *testing.T) {
	if got := NormalizeAlias("  QTY "); got != "qty" {
		t.Fatalf("expected trimmed lower-case alias, got %q", got)
	}
}

func TestSlugifyFallsBackForEmptyInput(t *testing.T) {
	if got := Slugify("  ***  "); got != "column" {
		t.Fatalf("expected fallback slug, got %q", got)
	}
}
