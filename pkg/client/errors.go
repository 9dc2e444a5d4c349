package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Codes synthesized on the client when the server did not provide one.
const (
	CodeNetwork = "NETWORK_ERROR"
	CodeUnknown = "UNKNOWN_ERROR"
)

// Messages synthesized on the client.
const (
	MsgNetwork    = "Network error. Please check your connection."
	MsgUnexpected = "An unexpected error occurred"
)

// ResponseError is returned when the server answered with a non-2xx status.
type ResponseError struct {
	Status int
	Body   []byte
}

func (e *ResponseError) Error() string {
	if e == nil {
		return "api responded with an error"
	}
	return fmt.Sprintf("api responded with status %d", e.Status)
}

// RequestError is returned when no response was received at all.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	if e == nil || e.Err == nil {
		return "api request failed"
	}
	return "api request failed: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldDetail is one per-field validation failure.
type FieldDetail struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// DisplayError is the one shape every failure is reduced to for display.
// Details is never nil. Status is zero when no response was received.
type DisplayError struct {
	Message string
	Code    string
	Details []FieldDetail
	Status  int
}

// Normalize reduces any error to a DisplayError. It never panics.
func Normalize(err error) DisplayError {
	unknown := DisplayError{Message: MsgUnexpected, Code: CodeUnknown, Details: []FieldDetail{}}
	if err == nil {
		return unknown
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		if respErr == nil {
			return unknown
		}
		return fromResponse(respErr)
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return DisplayError{Message: MsgNetwork, Code: CodeNetwork, Details: []FieldDetail{}}
	}

	if msg := errorText(err); msg != "" {
		unknown.Message = msg
	}
	return unknown
}

// errorText is err.Error(), or "" when a nil receiver makes Error panic.
func errorText(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = ""
		}
	}()
	return err.Error()
}

type envelope struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// errorBody keeps each member raw so one mistyped member does not hide the
// others.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}

func fromResponse(e *ResponseError) DisplayError {
	out := DisplayError{
		Message: fmt.Sprintf("Server error (%d)", e.Status),
		Details: []FieldDetail{},
		Status:  e.Status,
	}

	var env envelope
	if err := json.Unmarshal(e.Body, &env); err != nil {
		return out
	}

	if isObject(env.Error) {
		var body errorBody
		if err := json.Unmarshal(env.Error, &body); err == nil {
			var msg string
			if json.Unmarshal(body.Message, &msg) == nil && msg != "" {
				out.Message = msg
			}
			_ = json.Unmarshal(body.Code, &out.Code)
			var details []FieldDetail
			if json.Unmarshal(body.Details, &details) == nil && details != nil {
				out.Details = details
			}
			return out
		}
	}

	var msg string
	if err := json.Unmarshal(env.Message, &msg); err == nil && msg != "" {
		out.Message = msg
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}

// FormatDetails renders details as "field: message" lines, or "" when there
// are none.
func FormatDetails(details []FieldDetail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, d.Field+": "+d.Message)
	}
	return strings.Join(lines, "\n")
}
