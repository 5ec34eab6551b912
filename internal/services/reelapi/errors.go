package reelapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// statusError is a non-2xx response from the backend
type statusError struct {
	code   int
	detail string
}

func (e *statusError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("status %d: %s", e.code, e.detail)
	}
	return fmt.Sprintf("status %d: %s", e.code, http.StatusText(e.code))
}

// StatusCode returns the HTTP status of the failed response
func (e *statusError) StatusCode() int {
	return e.code
}

// reasonOf extracts the most useful text for a user facing message
func reasonOf(err error) string {
	var se *statusError
	if errors.As(err, &se) && se.detail != "" {
		return se.detail
	}
	return err.Error()
}

// errorDetail pulls "detail" out of an error body. The backend uses either a
// plain string or a list of validation entries with a "msg" field.
func errorDetail(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(body.Detail) > 0 {
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil {
			return text
		}

		var entries []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &entries); err == nil {
			msgs := make([]string, 0, len(entries))
			for _, e := range entries {
				if e.Msg != "" {
					msgs = append(msgs, e.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	return body.Error
}
