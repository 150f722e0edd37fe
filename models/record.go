package models

import "time"

// Field labels the directory renders on every detail view. Unknown labels
// are carried through as-is, these are only the ones the pipeline treats
// specially.
const (
	FieldServiceName = "Service Name"
	FieldKeywords    = "Keyword(s) Associate With Service"
	FieldCounties    = "Counties Available"
)

// ServiceRecord is one extracted directory entry. Key is derived from the
// canonical detail URL and is stable across runs.
type ServiceRecord struct {
	Key    string            `json:"id"`
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// Name returns a human-readable handle for log lines and reports.
func (r ServiceRecord) Name() string {
	if v := r.Fields[FieldServiceName]; v != "" {
		return v
	}
	return r.URL
}

// Snapshot is the rendered HTML of a page captured from the browser session.
type Snapshot struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}

// ListingPage is one page of search results with the detail URLs found on it,
// in document order.
type ListingPage struct {
	Number int
	URLs   []string
}

// SkipRecord documents a detail page that was given up on after retries.
type SkipRecord struct {
	URL      string `json:"url"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}
