package ingestion

import (
	"github.com/nikolailic0529/easyquote-ingest/internal/extraction"
)

// Special page attributes promoted into synthetic columns during price-list
// normalization. The searchable attribute is sourced from the page's
// service_agreement_id.
const (
	attrSystemHandle     = "system_handle"
	attrPricingDocument  = "pricing_document"
	attrSearchable       = "searchable"
	attrServiceAgreement = "service_agreement_id"
)

var attributeHeaders = map[string]string{
	attrSystemHandle:    "System Handle",
	attrPricingDocument: "Pricing Document",
	attrSearchable:      "Service Agreement ID",
}

// NormalizePages runs the two-pass attribute normalization over a price-list
// response. The first pass decides, across all pages, which of the special
// attributes exist at all; the second pass keeps only the retained keys per
// page and merges synthetic header labels into pages that carry a value.
// Keeping the passes sequential keeps the global-then-local semantics
// auditable.
func NormalizePages(pages []extraction.Page) []extraction.Page {
	retained := retainedAttributes(pages)

	normalized := make([]extraction.Page, len(pages))
	for i, page := range pages {
		attrs := make(map[string]*string, len(retained))
		hasValue := false
		for key := range retained {
			value := pageAttribute(page, key)
			if value != "" {
				v := value
				attrs[key] = &v
				hasValue = true
			}
		}

		header := make(map[string]string, len(page.Header)+len(retained))
		for k, v := range page.Header {
			header[k] = v
		}
		if hasValue {
			for key := range retained {
				header[key] = attributeHeaders[key]
			}
		}

		normalized[i] = extraction.Page{
			Header:     header,
			Rows:       page.Rows,
			Attributes: attrs,
		}
	}

	return normalized
}

// retainedAttributes is the first pass: an attribute key survives only if at
// least one page carries a non-empty value for it.
func retainedAttributes(pages []extraction.Page) map[string]bool {
	retained := make(map[string]bool)
	for _, page := range pages {
		for key := range attributeHeaders {
			if pageAttribute(page, key) != "" {
				retained[key] = true
			}
		}
	}
	return retained
}

func pageAttribute(page extraction.Page, key string) string {
	source := key
	if key == attrSearchable {
		source = attrServiceAgreement
	}
	value, ok := page.Attributes[source]
	if !ok || value == nil {
		return ""
	}
	return *value
}
