// Package preview renders human-readable content previews for crawl
// results. It is presentation only; the single rule is that absent fields
// never cause a panic or an error, they just print less.
package preview

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/crawl4ai-client/internal/client"
)

const (
	plainPreviewChars     = 200
	fieldPreviewChars     = 150
	citationsPreviewChars = 500
)

// Summary writes the result header: URL and status only. The asynchronous
// path uses it for completed-task listings.
func Summary(w io.Writer, r client.CrawlResult) {
	fmt.Fprintf(w, "\n--- Result ---\n")
	fmt.Fprintf(w, "URL: %s\n", orNA(r.URL))
	fmt.Fprintf(w, "Status: %s\n", orNA(r.Status))
}

// Render writes the full preview for one result: the header plus exactly one
// content block, chosen in priority order markdown-as-string, content, text,
// structured markdown. Results carrying none of these get the header only.
func Render(w io.Writer, r client.CrawlResult) {
	Summary(w, r)
	fmt.Fprintf(w, "Success: %t\n", r.Success)
	fmt.Fprintf(w, "Status code: %d\n", r.StatusCode)

	if s, ok := r.Markdown.Text(); ok {
		renderPlain(w, s)
		return
	}
	if r.Content != "" {
		renderPlain(w, r.Content)
		return
	}
	if r.Text != "" {
		renderPlain(w, r.Text)
		return
	}
	if doc, ok := r.Markdown.Document(); ok {
		renderDocument(w, doc, r.ExtractedContent)
	}
}

func renderPlain(w io.Writer, s string) {
	fmt.Fprintf(w, "Content length: %d chars\n", utf8.RuneCountInString(s))
	fmt.Fprintf(w, "Content preview: %s...\n", truncate(s, plainPreviewChars))
}

func renderDocument(w io.Writer, doc *client.MarkdownDocument, extracted string) {
	fields := []struct {
		name string
		val  *string
	}{
		{"raw_markdown", doc.RawMarkdown},
		{"markdown_with_citations", doc.MarkdownWithCitations},
		{"references_markdown", doc.ReferencesMarkdown},
		{"fit_markdown", doc.FitMarkdown},
	}

	fmt.Fprintf(w, "\n--- Markdown Fields Comparison ---\n")
	for _, f := range fields {
		if f.val == nil {
			continue
		}
		v := *f.val
		fmt.Fprintf(w, "  %s: %d chars, %d lines\n", f.name, utf8.RuneCountInString(v), strings.Count(v, "\n"))
		fmt.Fprintf(w, "    Preview: %s...\n", collapse(truncate(v, fieldPreviewChars)))
	}
	fmt.Fprintf(w, "  fit_html: %d chars\n", utf8.RuneCountInString(doc.FitHTMLValue()))

	if doc.MarkdownWithCitations != nil {
		fmt.Fprintf(w, "\n--- markdown_with_citations sample (with citations) ---\n")
		fmt.Fprintf(w, "%s...\n", collapse(truncate(*doc.MarkdownWithCitations, citationsPreviewChars)))
	}

	if extracted != "" {
		fmt.Fprintf(w, "\n--- extracted_content ---\n")
		fmt.Fprintf(w, "  %d chars, %d lines\n", utf8.RuneCountInString(extracted), strings.Count(extracted, "\n"))
		fmt.Fprintf(w, "  Preview: %s...\n", collapse(truncate(extracted, fieldPreviewChars)))
	}
}

// truncate returns the first n characters (not bytes) of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// collapse folds newlines into spaces so previews stay on one line.
func collapse(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
