package service

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestEncodeSessionRoundTrip(t *testing.T) {
	session := DiscordSession{
		ID:            "123456789012345678",
		Username:      "khx",
		Discriminator: "0",
		Avatar:        "a1b2c3",
	}

	encoded, err := EncodeSession(session)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeSession(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != session {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, session)
	}
}

func TestEncodeSessionProducesPlainBase64JSON(t *testing.T) {
	encoded, err := EncodeSession(DiscordSession{ID: "42", Username: "tester"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// 前端以 atob + JSON.parse 解码，必须是标准 base64 包裹的 JSON 对象
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("not standard base64: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("not a JSON object: %v", err)
	}
	if payload["id"] != "42" || payload["username"] != "tester" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
