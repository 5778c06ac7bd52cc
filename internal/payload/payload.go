// Package payload builds the canonical webhook JSON body of spec §3/§4.4:
// exactly one top-level key carrying the native event object, plus an
// optional "channel" key present if and only if a non-empty channel
// snapshot was supplied.
package payload

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
)

// Kind is the event-kind tag used as the webhook dispatch's "handler" query
// parameter (spec §6) and, for every kind except the two reaction kinds
// (see reactionWireKind), as the payload's sole top-level key.
type Kind string

const (
	KindReady             Kind = "ready"
	KindResumed           Kind = "resumed"
	KindMessage           Kind = "message"
	KindMessageUpdate     Kind = "message_update"
	KindMessageDelete     Kind = "message_delete"
	KindMessageDeleteBulk Kind = "message_delete_bulk"
	KindReactionAdd       Kind = "reaction_add"
	KindReactionRemove    Kind = "reaction_remove"
)

// reactionWireKind is the JSON key used for both reaction_add and
// reaction_remove events — spec §3 lists a single "reaction" kind-carrying
// key shared by both.
const reactionWireKind = "reaction"

// Build assembles the webhook payload for kind, wrapping native, with
// channel included only when non-nil. native is marshaled as-is into the
// kind-carrying key (or "reaction" for the two reaction kinds), so callers
// pass the platform-native event struct (e.g. *discordgo.MessageCreate)
// directly.
func Build(kind Kind, native any, channel *discordgo.Channel) ([]byte, error) {
	obj := map[string]any{
		wireKey(kind): native,
	}
	if channel != nil {
		obj["channel"] = channel
	}
	return json.Marshal(obj)
}

func wireKey(kind Kind) string {
	switch kind {
	case KindReactionAdd, KindReactionRemove:
		return reactionWireKind
	default:
		return string(kind)
	}
}
