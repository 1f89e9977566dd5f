// Package lookup implements the order lookup pipeline: input validation,
// CAPTCHA gating, safe query construction, the backend call, and projection
// of the raw record into the public contract.
package lookup

// Request carries the raw, untrusted lookup input. Immutable once built.
type Request struct {
	Order        string
	Email        string
	CaptchaToken string
	RemoteIP     string
}

// TrackingEntry is one public tracking row.
type TrackingEntry struct {
	Number  string `json:"number"`
	URL     string `json:"url"`
	Company string `json:"company"`
}

// Result is the projected lookup outcome. Found=false is a valid terminal
// state, not an error.
type Result struct {
	Found         bool
	OrderName     string
	DisplayStatus string
	StatusPageURL *string
	Tracking      []TrackingEntry
}
