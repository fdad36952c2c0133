package ingestion

import (
	"testing"

	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
)

func strPtr(v string) *string { return &v }

func TestNormalizePagesRetainsAttributeSeenOnAnyPage(t *testing.T) {
	pages := []extraction.Page{
		{
			Header:     map[string]string{"column_1": "Description"},
			Rows:       []map[string]string{{"column_1": "Support"}},
			Attributes: map[string]*string{"system_handle": nil},
		},
		{
			Header:     map[string]string{"column_1": "Description"},
			Rows:       []map[string]string{{"column_1": "Maintenance"}},
			Attributes: map[string]*string{"system_handle": strPtr("SRV-01")},
		},
	}

	normalized := NormalizePages(pages)

	if len(normalized) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(normalized))
	}

	// Page 1 has no value for the attribute, so it gains neither the value
	// nor the synthetic header label.
	if _, ok := normalized[0].Attributes["system_handle"]; ok {
		t.Errorf("page without attribute value should not carry it")
	}
	if _, ok := normalized[0].Header["system_handle"]; ok {
		t.Errorf("page without attribute value should not gain synthetic header")
	}

	// Page 2 carries the value and the synthetic header.
	value, ok := normalized[1].Attributes["system_handle"]
	if !ok || value == nil || *value != "SRV-01" {
		t.Fatalf("expected system_handle SRV-01 on page 2, got %v", value)
	}
	if normalized[1].Header["system_handle"] != "System Handle" {
		t.Errorf("expected synthetic header label, got %q", normalized[1].Header["system_handle"])
	}
}

func TestNormalizePagesDropsAttributeEmptyEverywhere(t *testing.T) {
	pages := []extraction.Page{
		{
			Header:     map[string]string{"column_1": "Description"},
			Rows:       []map[string]string{{"column_1": "Support"}},
			Attributes: map[string]*string{"pricing_document": strPtr("")},
		},
		{
			Header:     map[string]string{"column_1": "Description"},
			Rows:       []map[string]string{{"column_1": "Maintenance"}},
			Attributes: map[string]*string{},
		},
	}

	for i, page := range NormalizePages(pages) {
		if len(page.Attributes) != 0 {
			t.Errorf("page %d: expected no attributes, got %v", i, page.Attributes)
		}
		if _, ok := page.Header["pricing_document"]; ok {
			t.Errorf("page %d: expected no synthetic header", i)
		}
	}
}

func TestNormalizePagesSearchableComesFromServiceAgreementID(t *testing.T) {
	pages := []extraction.Page{
		{
			Header:     map[string]string{"column_1": "Description"},
			Rows:       []map[string]string{{"column_1": "Support"}},
			Attributes: map[string]*string{"service_agreement_id": strPtr("SA-42")},
		},
	}

	normalized := NormalizePages(pages)

	value, ok := normalized[0].Attributes["searchable"]
	if !ok || value == nil || *value != "SA-42" {
		t.Fatalf("expected searchable SA-42, got %v", value)
	}
	if normalized[0].Header["searchable"] != "Service Agreement ID" {
		t.Errorf("expected Service Agreement ID label, got %q", normalized[0].Header["searchable"])
	}
}
