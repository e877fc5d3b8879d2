package amqp

import (
	"encoding/json"
	"time"
)

// RecordChangedMessage announces that a record collection changed.
// It carries only the record kind, ID and operation; consumers fetch
// fresh snapshots from the store rather than trusting message payloads.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"` // expense | mileage | loan | settings
	ID        string    `json:"id"`
	Op        string    `json:"op"` // create | update | delete
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(kind, id, op string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON creates a message from JSON bytes.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
