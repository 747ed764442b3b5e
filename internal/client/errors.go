package client

import "fmt"

const errBodySnippet = 512

// SubmissionError is a non-200 answer to POST /crawl.
type SubmissionError struct {
	StatusCode int
	Body       []byte
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit crawl job: status %d: %s", e.StatusCode, snippet(e.Body))
}

// ProtocolError is a 200 submission response carrying neither "results" nor
// "task_id".
type ProtocolError struct {
	Body []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("submit response has neither results nor task_id: %s", snippet(e.Body))
}

// PollError is a non-200 answer to GET /task/{id}. It ends the polling loop.
type PollError struct {
	StatusCode int
	Body       []byte
}

func (e *PollError) Error() string {
	return fmt.Sprintf("get task status: status %d: %s", e.StatusCode, snippet(e.Body))
}

// TaskFailure is a terminal task status other than "running" or "completed".
// Raw holds the full status body for diagnostic printing.
type TaskFailure struct {
	Status string
	Raw    []byte
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("task failed or unknown status %q: %s", e.Status, snippet(e.Raw))
}

func snippet(body []byte) string {
	if len(body) > errBodySnippet {
		return string(body[:errBodySnippet]) + "..."
	}
	return string(body)
}
