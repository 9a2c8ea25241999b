package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one call against the backend. Path is relative to the
// client's base URL and may carry a query string.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// At most one of JSON and Form is used as the body.
	JSON any
	Form url.Values
}

// Get builds a GET request.
func Get(path string) Request { return Request{Method: http.MethodGet, Path: path} }

// Delete builds a DELETE request.
func Delete(path string) Request { return Request{Method: http.MethodDelete, Path: path} }

// PostJSON builds a POST request with a JSON body.
func PostJSON(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, JSON: body}
}

// PostForm builds a form-encoded POST request.
func PostForm(path string, form url.Values) Request {
	return Request{Method: http.MethodPost, Path: path, Form: form}
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r Request) body() (io.Reader, string, error) {
	switch {
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	case r.Form != nil:
		return strings.NewReader(r.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", nil
	}
}

// Response is a fully read backend response. Non-2xx statuses are carried
// here, never returned as errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if r == nil {
		return fmt.Errorf("decode response: nil response")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Detail extracts the "detail" field of an error payload. String details are
// returned verbatim; structured ones are re-encoded as JSON. When the body is
// not JSON the raw text is returned.
func (r *Response) Detail() string {
	if r == nil {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(r.Text())
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

// Status formats the status line the way error messages show it, e.g. "422 Unprocessable Entity".
func (r *Response) Status() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}
