package ingestion

import "testing"

func TestMapPaymentsSkipsIncompleteRows(t *testing.T) {
	rows := []map[string]string{
		{"from_date": "01.01.2024", "to_date": "31.03.2024", "value": "1,000.00"},
		{"from_date": "01.04.2024", "value": "1,200.00"},
		{"to_date": "30.09.2024", "value": "1,300.00"},
		{"from_date": "01.10.2024", "to_date": "31.12.2024"},
		{"from_date": "01.01.2025", "to_date": "31.03.2025", "value": "1,400.00"},
	}

	entries := MapPayments(rows)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].From != "01.01.2024" || entries[0].To != "31.03.2024" || entries[0].Price != "1,000.00" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].From != "01.01.2025" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestMapPaymentsEmptyInput(t *testing.T) {
	if entries := MapPayments(nil); len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
