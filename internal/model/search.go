package model

import "time"

// Search outcomes recorded in the history log.
const (
	OutcomeOK            = "ok"
	OutcomeSourceError   = "source_error"
	OutcomeUpstreamError = "upstream_error"
)

// Search sources.
const (
	SourceURL    = "url"
	SourceUpload = "upload"
)

// SearchRecord is one entry in the search history log.
type SearchRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	SourceURL  string    `json:"source_url,omitempty"`
	Bytes      int64     `json:"bytes"`
	NumResults int       `json:"numres"`
	Dedupe     int       `json:"dedupe"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
