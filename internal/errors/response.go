package errors

// ErrorBody is the payload of a failed response.
type ErrorBody struct {
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

// ErrorResponse is the envelope every non-2xx response body conforms to.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ToErrorResponse converts e into the wire envelope. In development the
// captured stack and the underlying cause of internal errors are exposed.
func (e *Error) ToErrorResponse(development bool) ErrorResponse {
	body := ErrorBody{
		Message: e.Message,
		Code:    e.Code(),
		Details: e.Details,
	}
	if development {
		body.Stack = e.stack
		if e.Kind == KindInternal && e.StatusCode == 0 && e.Err != nil {
			body.Message = e.Err.Error()
		}
	}
	return ErrorResponse{Success: false, Error: body}
}
