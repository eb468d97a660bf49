package activity

import "net/http"

// Response is the invoke-style result returned to the transport after an
// activity is processed.
type Response struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// OK wraps a body in a 200 response. A nil body is an empty success.
func OK(body any) *Response {
	return &Response{Status: http.StatusOK, Body: body}
}

// InternalError is the synthesized response for an unobserved handler
// failure.
func InternalError(body any) *Response {
	return &Response{Status: http.StatusInternalServerError, Body: body}
}
