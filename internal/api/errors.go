package api

import "strconv"

// APIError carries the structured error body of a failed API call.
// Status is the HTTP status code; Code and ErrorCode mirror the
// server's error taxonomy.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return "api error: " + strconv.Itoa(e.Status)
	}
	return "api error"
}
