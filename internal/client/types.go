package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultPriority is used when a CrawlRequest does not set one.
const DefaultPriority = 10

// Task status values reported by the service. Anything else is terminal
// failure.
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
)

// CrawlRequest is the submission payload for POST /crawl.
type CrawlRequest struct {
	URLs     []string `json:"urls"`
	Priority int      `json:"priority"`
}

// SubmitResponse is what the service returns from POST /crawl. It is a
// union: either the crawl ran synchronously and Results holds the pages
// (Immediate reports true even for an empty result list), or the job was
// queued and TaskID identifies it for polling.
type SubmitResponse struct {
	Results []CrawlResult
	TaskID  string

	immediate bool
}

// Immediate reports whether the service answered synchronously. The
// distinction is keyed on the presence of the "results" field, not on its
// length.
func (r *SubmitResponse) Immediate() bool {
	return r.immediate
}

// UnmarshalJSON decodes the union, recording whether the "results" key was
// present at all.
func (r *SubmitResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Results *[]CrawlResult `json:"results"`
		TaskID  string         `json:"task_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode submit response: %w", err)
	}
	r.TaskID = raw.TaskID
	if raw.Results != nil {
		r.immediate = true
		r.Results = *raw.Results
	}
	return nil
}

// CrawlResult is a single crawled page. The service is loose about which
// content fields it populates, so every field is optional and decoding never
// fails on absent ones.
type CrawlResult struct {
	URL              string          `json:"url"`
	Status           string          `json:"status"`
	Success          bool            `json:"success"`
	StatusCode       int             `json:"status_code"`
	Markdown         MarkdownContent `json:"markdown"`
	Content          string          `json:"content"`
	Text             string          `json:"text"`
	ExtractedContent string          `json:"extracted_content"`
}

// MarkdownContent is the union behind the "markdown" field: older service
// versions return a plain string, newer ones an object with several derived
// markdown variants. Values of any other JSON type decode to the empty
// content.
type MarkdownContent struct {
	text string
	str  bool
	doc  *MarkdownDocument
}

// MarkdownDocument is the structured markdown variant. Pointer fields
// distinguish absent keys from present-but-empty strings, which matters for
// the field-by-field preview.
type MarkdownDocument struct {
	RawMarkdown           *string `json:"raw_markdown"`
	MarkdownWithCitations *string `json:"markdown_with_citations"`
	ReferencesMarkdown    *string `json:"references_markdown"`
	FitMarkdown           *string `json:"fit_markdown"`
	FitHTML               *string `json:"fit_html"`
}

// Text returns the markdown as a plain string, if that is what the service
// sent.
func (m MarkdownContent) Text() (string, bool) {
	return m.text, m.str
}

// Document returns the structured markdown variant, if present.
func (m MarkdownContent) Document() (*MarkdownDocument, bool) {
	if m.doc == nil {
		return nil, false
	}
	return m.doc, true
}

// UnmarshalJSON accepts a string, an object, or anything else (treated as no
// content).
func (m *MarkdownContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode markdown string: %w", err)
		}
		m.text = s
		m.str = true
	case '{':
		doc := &MarkdownDocument{}
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return fmt.Errorf("decode markdown object: %w", err)
		}
		m.doc = doc
	default:
		// null, numbers, arrays: the source data is not markdown we can
		// preview, so leave the union empty rather than fail the result.
	}
	return nil
}

// FitHTMLValue returns fit_html or the empty string; its length is reported
// even when the key is absent.
func (d *MarkdownDocument) FitHTMLValue() string {
	if d == nil || d.FitHTML == nil {
		return ""
	}
	return *d.FitHTML
}

// TaskStatus is the body of GET /task/{id}. Raw preserves the undecoded
// response for diagnostic printing when the status is unexpected.
type TaskStatus struct {
	Status  string        `json:"status"`
	Results []CrawlResult `json:"results"`

	Raw []byte `json:"-"`
}
