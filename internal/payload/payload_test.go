package payload

import (
	"encoding/json"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestBuild_SingleKindKey(t *testing.T) {
	body, err := Build(KindMessage, map[string]string{"id": "1"}, nil)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(obj) != 1 {
		t.Fatalf("Build: got %d top-level keys, want exactly 1: %v", len(obj), obj)
	}
	if _, ok := obj["message"]; !ok {
		t.Errorf("Build: expected %q key, got keys %v", "message", keysOf(obj))
	}
}

func TestBuild_ChannelOmittedWhenNil(t *testing.T) {
	body, err := Build(KindMessage, map[string]string{"id": "1"}, nil)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	var obj map[string]json.RawMessage
	json.Unmarshal(body, &obj)
	if _, ok := obj["channel"]; ok {
		t.Errorf("Build: channel key present when channel snapshot was nil")
	}
}

func TestBuild_ChannelPresentWhenGiven(t *testing.T) {
	ch := &discordgo.Channel{ID: "2", Type: discordgo.ChannelTypeGuildText}
	body, err := Build(KindMessage, map[string]string{"id": "1"}, ch)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	var obj map[string]json.RawMessage
	json.Unmarshal(body, &obj)
	if _, ok := obj["channel"]; !ok {
		t.Fatalf("Build: expected channel key to be present")
	}
	var decoded discordgo.Channel
	if err := json.Unmarshal(obj["channel"], &decoded); err != nil {
		t.Fatalf("unmarshal channel: %v", err)
	}
	if decoded.ID != "2" {
		t.Errorf("Build: channel id = %q, want 2", decoded.ID)
	}
}

func TestBuild_ReactionKindsShareWireKey(t *testing.T) {
	for _, kind := range []Kind{KindReactionAdd, KindReactionRemove} {
		body, err := Build(kind, map[string]string{"message_id": "1"}, nil)
		if err != nil {
			t.Fatalf("Build(%s): unexpected error: %v", kind, err)
		}
		var obj map[string]json.RawMessage
		json.Unmarshal(body, &obj)
		if _, ok := obj["reaction"]; !ok {
			t.Errorf("Build(%s): expected %q key, got keys %v", kind, "reaction", keysOf(obj))
		}
	}
}

func keysOf(m map[string]json.RawMessage) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
