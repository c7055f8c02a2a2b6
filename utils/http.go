package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// Error kinds used in response bodies
const (
	KindInvalidInput  = "InvalidInput"
	KindInternalError = "InternalError"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with data as the body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 InvalidInput response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteError(w, http.StatusBadRequest, KindInvalidInput, message, details)
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteError(w, http.StatusInternalServerError, KindInternalError, message, nil)
}

// WriteError writes an error body of the given kind
func WriteError(w http.ResponseWriter, status int, kind, message string, details map[string]interface{}) error {
	if len(details) == 0 {
		details = nil
	}
	return WriteJSON(w, status, ErrorResponse{
		Kind:    kind,
		Message: message,
		Details: details,
	})
}

// DecodeError describes a request body that could not be decoded into the
// target type.
type DecodeError struct {
	// Field is the JSON path of the offending value, empty for body-level errors
	Field   string
	Message string
}

func (e *DecodeError) Error() string {
	return e.Message
}

// DecodeJSON decodes a single JSON value from body into dst. Syntax errors,
// type mismatches and empty bodies are returned as *DecodeError.
func DecodeJSON(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return &DecodeError{Message: "request body is empty"}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return &DecodeError{Message: "request body is not valid JSON"}
		case errors.As(err, &typeErr):
			if typeErr.Field == "" {
				return &DecodeError{Message: "request body must be a JSON object"}
			}
			return &DecodeError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be %s", typeErr.Field, jsonTypeName(typeErr.Type)),
			}
		default:
			return &DecodeError{Message: "request body could not be decoded"}
		}
	}
	if _, err := dec.Token(); err != io.EOF {
		return &DecodeError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
