package mailer

import (
	"encoding/json"
	"testing"
)

func TestRequestPayloadShape(t *testing.T) {
	request := apiRequest{
		APIKey:   "key",
		To:       []string{"admin@example.edu"},
		Sender:   "noreply@example.edu",
		Subject:  "New directory submission: Room Booking",
		TextBody: "body",
	}

	data, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, field := range []string{"api_key", "to", "sender", "subject", "text_body"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("expected field %q in payload", field)
		}
	}
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = Noop{}
	if err := n.NotifySubmission("admin@example.edu", "Room Booking", "A Student"); err != nil {
		t.Errorf("Noop should never fail: %v", err)
	}
}
