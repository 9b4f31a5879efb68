package models

import "encoding/json"

// Envelope is the uniform body of every API response:
//
//	{"success": true, "message": "...", "data": {...}}
//
// It can only be built with Success or Failure and has no setters.
type Envelope[T any] struct {
	success bool
	message string
	data    *T
}

// Success wraps a result.
func Success[T any](data T, message string) Envelope[T] {
	return Envelope[T]{success: true, message: message, data: &data}
}

// Failure reports an error; it never carries data.
func Failure[T any](message string) Envelope[T] {
	return Envelope[T]{message: message}
}

// OK reports whether the envelope was built by Success.
func (e Envelope[T]) OK() bool { return e.success }

// Message returns the human-readable outcome.
func (e Envelope[T]) Message() string { return e.message }

// Data returns the payload and whether there is one.
func (e Envelope[T]) Data() (T, bool) {
	if e.data == nil {
		var zero T
		return zero, false
	}
	return *e.data, true
}

type envelopeJSON[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// MarshalJSON renders the envelope with "data" as null when absent.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeJSON[T]{Success: e.success, Message: e.message, Data: e.data})
}
