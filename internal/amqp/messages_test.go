package amqp

import "testing"

func TestRecordChangedMessageRoundTrip(t *testing.T) {
	msg := NewRecordChangedMessage("expense", "abc-123", "create")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := RecordChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Kind != "expense" || got.ID != "abc-123" || got.Op != "create" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestRecordChangedMessageFromJSONInvalid(t *testing.T) {
	if _, err := RecordChangedMessageFromJSON([]byte("{")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
