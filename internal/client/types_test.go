package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubmitResponse_ResultsKeyWinsOverTaskID(t *testing.T) {
	t.Parallel()

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal([]byte(`{"results":[],"task_id":"abc"}`), &resp))
	require.True(t, resp.Immediate())
	require.Equal(t, "abc", resp.TaskID)
}

func TestSubmitResponse_AbsentResultsIsDeferred(t *testing.T) {
	t.Parallel()

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal([]byte(`{"task_id":"abc"}`), &resp))
	require.False(t, resp.Immediate())
	require.Equal(t, "abc", resp.TaskID)
}

func TestSubmitResponse_NeitherKey(t *testing.T) {
	t.Parallel()

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal([]byte(`{"detail":"accepted"}`), &resp))
	require.False(t, resp.Immediate())
	require.Empty(t, resp.TaskID)
}

func TestMarkdownContent_String(t *testing.T) {
	t.Parallel()

	var r CrawlResult
	require.NoError(t, json.Unmarshal([]byte(`{"markdown":"# Title"}`), &r))

	s, ok := r.Markdown.Text()
	require.True(t, ok)
	require.Equal(t, "# Title", s)
	_, ok = r.Markdown.Document()
	require.False(t, ok)
}

func TestMarkdownContent_ObjectSubset(t *testing.T) {
	t.Parallel()

	var r CrawlResult
	require.NoError(t, json.Unmarshal([]byte(`{"markdown":{"raw_markdown":"raw","fit_html":""}}`), &r))

	doc, ok := r.Markdown.Document()
	require.True(t, ok)
	require.NotNil(t, doc.RawMarkdown)
	require.Equal(t, "raw", *doc.RawMarkdown)
	require.Nil(t, doc.MarkdownWithCitations)
	require.Nil(t, doc.ReferencesMarkdown)
	require.Nil(t, doc.FitMarkdown)
	require.NotNil(t, doc.FitHTML)
	require.Equal(t, "", doc.FitHTMLValue())
}

func TestMarkdownContent_FitHTMLDefaultsWhenAbsent(t *testing.T) {
	t.Parallel()

	var r CrawlResult
	require.NoError(t, json.Unmarshal([]byte(`{"markdown":{"raw_markdown":"raw"}}`), &r))

	doc, ok := r.Markdown.Document()
	require.True(t, ok)
	require.Nil(t, doc.FitHTML)
	require.Equal(t, "", doc.FitHTMLValue())
}

func TestMarkdownContent_OtherTypesAreEmpty(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`{"markdown":null}`, `{"markdown":42}`, `{"markdown":[1,2]}`, `{}`} {
		var r CrawlResult
		require.NoError(t, json.Unmarshal([]byte(payload), &r), "payload %s", payload)

		_, isText := r.Markdown.Text()
		require.False(t, isText, "payload %s", payload)
		_, isDoc := r.Markdown.Document()
		require.False(t, isDoc, "payload %s", payload)
	}
}

func TestCrawlResult_MinimalPayload(t *testing.T) {
	t.Parallel()

	var r CrawlResult
	require.NoError(t, json.Unmarshal([]byte(`{}`), &r))
	require.Empty(t, r.URL)
	require.False(t, r.Success)
	require.Zero(t, r.StatusCode)
	require.Empty(t, r.ExtractedContent)
}

func TestTaskStatus_ResultsOptional(t *testing.T) {
	t.Parallel()

	var ts TaskStatus
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed"}`), &ts))
	require.Equal(t, "completed", ts.Status)
	require.Nil(t, ts.Results)
}
