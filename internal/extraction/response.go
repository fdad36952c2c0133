package extraction

// Page is one extracted page of a document. Rows may be null when the engine
// found no table on the page (cover pages); the page still counts toward the
// running page number.
type Page struct {
	Header     map[string]string  `json:"header"`
	Rows       []map[string]string `json:"rows"`
	Attributes map[string]*string `json:"attributes"`
}

// Response is the normalized shape of a document-engine extraction result:
// an ordered sequence of pages.
type Response struct {
	Pages []Page
}
