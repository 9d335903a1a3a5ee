package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage is the event published after an expense has been
// durably persisted. Consumers use it to mirror the record into downstream
// exports without re-reading the database.
type ExpenseRecordedMessage struct {
	ID          int64     `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Note        string    `json:"note,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
