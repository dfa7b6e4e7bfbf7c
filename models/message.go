package models

import "time"

// MessageKind styles a status banner.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
	MessageWarning MessageKind = "warning"
	MessageInfo    MessageKind = "info"
)

// Message is the single dismissible status banner shown to the operator.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
	At   time.Time   `json:"at"`
}
