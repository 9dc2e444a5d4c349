package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"ems/internal/auth"
	apperr "ems/internal/errors"
)

const (
	requestBodyKey  = "request_body"
	maxCapturedBody = 4 << 10
	redacted        = "[REDACTED]"
	anonymousUser   = "Not authenticated"
)

var sensitiveKeys = map[string]bool{
	"password":     true,
	"token":        true,
	"refreshtoken": true,
}

// ErrorHandler returns the Echo HTTPErrorHandler that turns every error into
// the error envelope. It is the only place failure responses are written.
func ErrorHandler(log logrus.FieldLogger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := apperr.Classify(err)
		logFailure(log, c, appErr)

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(appErr.Status())
		} else {
			writeErr = c.JSON(appErr.Status(), appErr.ToErrorResponse(development))
		}
		if writeErr != nil {
			log.WithError(writeErr).Error("write error response")
		}
	}
}

// logFailure writes the diagnostic record for a failed request. It never
// affects the response: panics are recovered and dropped.
func logFailure(log logrus.FieldLogger, c echo.Context, appErr *apperr.Error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Warn("diagnostic logging failed")
		}
	}()

	req := c.Request()
	user := anonymousUser
	if claims, ok := auth.ClaimsFromContext(c); ok {
		user = claims.UserID
	}

	entry := log.WithFields(logrus.Fields{
		"route":  c.Path(),
		"url":    req.URL.String(),
		"method": req.Method,
		"status": appErr.Status(),
		"code":   appErr.Code(),
		"user":   user,
	})
	if body := c.Get(requestBodyKey); body != nil {
		entry = entry.WithField("body", body)
	}
	if appErr.Err != nil {
		entry = entry.WithError(appErr.Err)
	}
	if len(appErr.Details) > 0 {
		entry = entry.WithField("details", appErr.Details)
	}

	if appErr.Status() >= http.StatusInternalServerError {
		entry.WithField("stack", appErr.Stack()).Error(appErr.Message)
		return
	}
	entry.Warn(appErr.Message)
}

// CaptureRequestBody keeps a redacted copy of JSON request bodies for the
// diagnostic record. The body is restored so handlers can still bind it.
func CaptureRequestBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))

			if len(raw) > 0 {
				c.Set(requestBodyKey, summarizeBody(raw))
			}
			return next(c)
		}
	}
}

func summarizeBody(raw []byte) interface{} {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Sprintf("<%d bytes, not JSON>", len(raw))
	}

	doc = redact(doc)
	if len(raw) > maxCapturedBody {
		out, err := json.Marshal(doc)
		if err != nil || len(out) > maxCapturedBody {
			return fmt.Sprintf("<%d bytes omitted>", len(raw))
		}
	}
	return doc
}

func redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if sensitiveKeys[strings.ToLower(k)] {
				t[k] = redacted
				continue
			}
			t[k] = redact(val)
		}
	case []interface{}:
		for i := range t {
			t[i] = redact(t[i])
		}
	}
	return v
}
