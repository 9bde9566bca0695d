package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Response is a fully buffered HTTP response.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// HeaderValue returns the first value of a header, matched case-insensitively.
func (r *Response) HeaderValue(key string) string {
	for k, v := range r.Header {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is a non-2xx answer from the Todo API.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("todo api: status %d: %s", e.StatusCode, e.Message)
}

// asError turns a non-2xx response into an *APIError.
func (r *Response) asError() error {
	if r.IsSuccess() {
		return nil
	}
	apiErr := &APIError{StatusCode: r.StatusCode}
	_ = json.Unmarshal(r.Body, apiErr)
	apiErr.StatusCode = r.StatusCode
	return apiErr
}
