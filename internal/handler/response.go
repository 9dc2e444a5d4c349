package handler

import (
	"bytes"
	"encoding/json"

	"ems/internal/model"
)

// MessageResponse is a success envelope that carries only a message.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
}

// EmployeeResponse wraps a single employee.
type EmployeeResponse struct {
	Success bool            `json:"success" example:"true"`
	Data    *model.Employee `json:"data"`
	Message string          `json:"message,omitempty"`
}

// EmployeeListResponse is one page of employees. Data is never null.
type EmployeeListResponse struct {
	Success    bool             `json:"success" example:"true"`
	Data       []model.Employee `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Success      bool             `json:"success" example:"true"`
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	User         model.PublicUser `json:"user"`
}

// TokenResponse is returned by a successful refresh.
type TokenResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token"`
}

// Numeric keeps the raw JSON text of a number so that malformed values reach
// the validator instead of failing the bind. Numbers and strings are taken
// verbatim, null becomes empty, and anything else is kept as its JSON text.
type Numeric string

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Numeric(data)
			return nil
		}
		*n = Numeric(s)
	default:
		*n = Numeric(data)
	}
	return nil
}
