package session

import "time"

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// User-facing status texts.
const (
	MsgInsightOK          = "Insights generated successfully"
	MsgInsightUnparseable = "Could not parse insight response. Please try again."
	MsgInsightFailed      = "Failed to get insights. Please try again."
	MsgEntryOK            = "Entry logged successfully"
	MsgEntryUnparseable   = "Could not parse tracker response. Please try again."
	MsgEntryFailed        = "Failed to log entry. Please try again."
	MsgQueryUnparseable   = "Could not parse tracker response. Please try again."
	MsgQueryFailed        = "Failed to get an answer. Please try again."
	MsgChatUnparseable    = "I apologize, but I was unable to process your request. Please try again."
	MsgChatFailed         = "Connection error. Please try again."
)

// Status is a transient banner. It is visible until ExpiresAt.
type Status struct {
	Kind      StatusKind `json:"kind" yaml:"kind"`
	Message   string     `json:"message" yaml:"message"`
	ExpiresAt time.Time  `json:"expires_at" yaml:"expires_at"`
}

func (s Status) visible(now time.Time) bool {
	return s.Message != "" && now.Before(s.ExpiresAt)
}
