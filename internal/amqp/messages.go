package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/core"
)

var ErrInvalidMessage = errors.New("invalid entry message")

// EntryLoggedMessage announces an entry accepted by a session. It carries the
// whole entry so consumers never read the session's store.
type EntryLoggedMessage struct {
	ID        string           `json:"id"`
	Domain    core.Domain      `json:"domain"`
	Entry     core.DomainEntry `json:"entry"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewEntryLoggedMessage(e core.DomainEntry) *EntryLoggedMessage {
	return &EntryLoggedMessage{
		ID:        uuid.NewString(),
		Domain:    e.Domain,
		Entry:     e,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryLoggedFromJSON decodes and checks a message body.
func EntryLoggedFromJSON(data []byte) (*EntryLoggedMessage, error) {
	var msg EntryLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidMessage, msg.ID)
	}
	if !msg.Domain.Valid() {
		return nil, fmt.Errorf("%w: domain %q", ErrInvalidMessage, msg.Domain)
	}
	msg.Entry.Domain = msg.Domain
	if err := msg.Entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &msg, nil
}
