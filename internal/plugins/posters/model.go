// Package posters shows a user's poster history and forwards generation
// and unlock requests to the poster collaborators. Unpaid posters are shown
// locked: their URL never reaches the browser.
package posters

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one poster history entry as returned by the history
// collaborator, after normalization.
type Record struct {
	UserID     string
	PromptUsed string
	PosterURL  *string
	Paid       bool
	Timestamp  string
}

// ViewRecord is what the dashboard renders. PosterURL is nil whenever
// Locked is true.
type ViewRecord struct {
	Prompt    string
	PosterURL *string
	Locked    bool
	Timestamp string
}

// GenerateRequest is the dashboard's generation form.
type GenerateRequest struct {
	Prompt string `form:"prompt"`
}

// UnlockRequest is the dashboard's unlock form.
type UnlockRequest struct {
	PromptUsed string `form:"prompt_used"`
}

// BuildView maps history records to view records in the order received.
// Only paid records expose their URL.
func BuildView(records []Record) []ViewRecord {
	views := make([]ViewRecord, 0, len(records))
	for _, r := range records {
		v := ViewRecord{
			Prompt:    r.PromptUsed,
			Locked:    !r.Paid,
			Timestamp: r.Timestamp,
		}
		if r.Paid && r.PosterURL != nil {
			url := *r.PosterURL
			v.PosterURL = &url
		}
		views = append(views, v)
	}
	return views
}

// recordFromMap decodes one normalized history object. Collaborators are
// loose with types, so paid may arrive as a bool, a string or a number, and
// the timestamp as a string or a number.
func recordFromMap(m map[string]any) Record {
	r := Record{
		UserID:     stringField(m, "user_id"),
		PromptUsed: stringField(m, "prompt_used"),
		Paid:       truthy(m["paid"]),
		Timestamp:  stringField(m, "timestamp"),
	}
	if url, ok := m["poster_url"].(string); ok && url != "" {
		r.PosterURL = &url
	}
	return r
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	case float64:
		return b != 0
	default:
		return false
	}
}
