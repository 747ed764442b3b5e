package preview

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/crawl4ai-client/internal/client"
)

func decodeResult(t *testing.T, payload string) client.CrawlResult {
	t.Helper()
	var r client.CrawlResult
	require.NoError(t, json.Unmarshal([]byte(payload), &r))
	return r
}

func render(t *testing.T, payload string) string {
	t.Helper()
	var buf bytes.Buffer
	Render(&buf, decodeResult(t, payload))
	return buf.String()
}

func TestRender_PlainMarkdownString(t *testing.T) {
	t.Parallel()

	out := render(t, `{"url":"https://example.com","status":"ok","success":true,"status_code":200,"markdown":"Hello"}`)

	want := "\n--- Result ---\n" +
		"URL: https://example.com\n" +
		"Status: ok\n" +
		"Success: true\n" +
		"Status code: 200\n" +
		"Content length: 5 chars\n" +
		"Content preview: Hello...\n"
	require.Equal(t, want, out)
}

func TestRender_TruncatesPlainContentAt200(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 250)
	out := render(t, `{"content":"`+long+`"}`)

	require.Contains(t, out, "Content length: 250 chars")
	require.Contains(t, out, "Content preview: "+strings.Repeat("a", 200)+"...\n")
	require.NotContains(t, out, strings.Repeat("a", 201))
}

func TestRender_ContentPriorityOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    string
		not     []string
	}{
		{
			name:    "markdown string beats content and text",
			payload: `{"markdown":"md wins","content":"content here","text":"text here"}`,
			want:    "Content preview: md wins...",
			not:     []string{"content here", "text here"},
		},
		{
			name:    "content beats text",
			payload: `{"content":"content here","text":"text here"}`,
			want:    "Content preview: content here...",
			not:     []string{"text here"},
		},
		{
			name:    "text beats structured markdown",
			payload: `{"text":"text here","markdown":{"raw_markdown":"raw"}}`,
			want:    "Content preview: text here...",
			not:     []string{"Markdown Fields Comparison"},
		},
		{
			name:    "structured markdown is the last resort",
			payload: `{"markdown":{"raw_markdown":"raw"}}`,
			want:    "--- Markdown Fields Comparison ---",
			not:     []string{"Content preview:"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render(t, tt.payload)
			require.Contains(t, out, tt.want)
			for _, absent := range tt.not {
				require.NotContains(t, out, absent)
			}
		})
	}
}

func TestRender_StructuredMarkdownSubset(t *testing.T) {
	t.Parallel()

	// Only raw_markdown and an empty fit_html: must not panic and must still
	// report the fit_html length.
	out := render(t, `{"markdown":{"raw_markdown":"line one\nline two","fit_html":""}}`)

	require.Contains(t, out, "raw_markdown: 17 chars, 1 lines")
	require.Contains(t, out, "Preview: line one line two...")
	require.Contains(t, out, "fit_html: 0 chars")
	require.NotContains(t, out, "markdown_with_citations")
	require.NotContains(t, out, "references_markdown")
	require.NotContains(t, out, "fit_markdown:")
}

func TestRender_StructuredMarkdownFull(t *testing.T) {
	t.Parallel()

	citations := strings.Repeat("cite\n", 200) // 1000 chars, plenty past the 500 cap
	fixture := map[string]any{
		"url":    "https://example.com",
		"status": "ok",
		"markdown": map[string]any{
			"raw_markdown":            "# Raw\nBody",
			"markdown_with_citations": citations,
			"references_markdown":     "[1]: https://example.com",
			"fit_markdown":            "fit",
			"fit_html":                "<p>hi</p>",
		},
		"extracted_content": "k: v\nk2: v2",
	}
	payload, err := json.Marshal(fixture)
	require.NoError(t, err)

	out := render(t, string(payload))

	require.Contains(t, out, "raw_markdown: 10 chars, 1 lines")
	require.Contains(t, out, "markdown_with_citations: 1000 chars, 200 lines")
	require.Contains(t, out, "references_markdown: 24 chars, 0 lines")
	require.Contains(t, out, "fit_markdown: 3 chars, 0 lines")
	require.Contains(t, out, "fit_html: 9 chars")

	require.Contains(t, out, "--- markdown_with_citations sample (with citations) ---")
	sample := strings.ReplaceAll(citations[:500], "\n", " ") + "..."
	require.Contains(t, out, sample)

	require.Contains(t, out, "--- extracted_content ---")
	require.Contains(t, out, "11 chars, 1 lines")
	require.Contains(t, out, "Preview: k: v k2: v2...")
}

func TestRender_NoContentFields(t *testing.T) {
	t.Parallel()

	out := render(t, `{}`)

	want := "\n--- Result ---\n" +
		"URL: N/A\n" +
		"Status: N/A\n" +
		"Success: false\n" +
		"Status code: 0\n"
	require.Equal(t, want, out)
}

func TestSummary_HeaderOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Summary(&buf, decodeResult(t, `{"url":"https://example.com","status":"ok","markdown":"Hello"}`))

	want := "\n--- Result ---\n" +
		"URL: https://example.com\n" +
		"Status: ok\n"
	require.Equal(t, want, buf.String())
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("é", 10) // 2 bytes per rune
	require.Equal(t, strings.Repeat("é", 4), truncate(s, 4))
	require.Equal(t, s, truncate(s, 10))
	require.Equal(t, s, truncate(s, 20))
}
