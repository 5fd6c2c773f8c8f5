package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"realmgate.io/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, m protocol.Message) {
		t.Helper()
		b, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate %s: %v", b, err)
		}
	}

	frame := compile("frame.schema.json")
	validate(frame, protocol.Handshake())
	validate(frame, protocol.Despawn(7))
	validate(frame, protocol.Movement(protocol.MovementOrientate, 3, int(protocol.OrientationDown)))

	validate(compile("notification.schema.json"), protocol.Notification("Incorrect purchase packets."))

	validate(compile("chat.schema.json"), protocol.ChatMessage(protocol.ChatLine{
		ID: 3, Name: "alice", WithBubble: true, Text: "hi", Duration: 7000,
	}))

	validate(compile("welcome.schema.json"), protocol.Welcome(protocol.WelcomePayload{
		ProtocolVersion: protocol.Version,
		SessionID:       "5c3c9a8e-5f0a-4a59-9d4f-2a1b0c0d0e0f",
		Instance:        1,
		Username:        "alice",
		X:               10,
		Y:               10,
		HitPoints:       69,
		MaxHitPoints:    69,
		MovementSpeed:   250,
	}))

	validate(compile("shop_select.schema.json"), protocol.ShopSelectMsg(protocol.ShopSelection{
		ID: 1, SlotID: 2, Currency: "gold", Price: 15,
	}))
}

func TestSchemas_RejectBadNotification(t *testing.T) {
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "notification.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var v any
	_ = json.Unmarshal([]byte(`[26,[2,""]]`), &v)
	if err := s.Validate(v); err == nil {
		t.Fatalf("expected empty notification text to be rejected")
	}
}
