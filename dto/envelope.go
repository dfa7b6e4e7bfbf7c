// Package dto defines the wire shapes exchanged with the accounts API.
// Field names follow the API's camelCase contract; converters hand decoded
// payloads over to the models package at the client boundary.
package dto

// Envelope is the {success, message} wrapper every accounts API payload
// carries regardless of HTTP status.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Accepted reports whether the server accepted the request.
func (e Envelope) Accepted() bool { return e.Success }

// FailureMessage returns the server-provided rejection text.
func (e Envelope) FailureMessage() string { return e.Message }
