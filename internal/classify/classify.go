// Package classify categorizes the sender of a gateway event into one of a
// small closed set of kinds. Classification is total (every event maps to
// exactly one kind) and mutually exclusive (decision order below makes it
// so) — see spec §4.1 and §8's MECE property.
package classify

// Kind is a sender classification. The zero value is never a valid
// classification result; Classify and ClassifyReaction always return one of
// the named constants below.
type Kind string

const (
	Self    Kind = "self"
	Webhook Kind = "webhook"
	System  Kind = "system"
	Bot     Kind = "bot"
	User    Kind = "user"
)

// All is the full sender-kind universe, in decision-priority order. Used by
// filterpolicy when parsing the "all" policy string.
var All = []Kind{Self, Webhook, System, Bot, User}

// ReactionKinds is the collapsed universe for reaction events, which have no
// webhook/system distinction (see spec §4.1: reactions skip steps 2 and 3).
var ReactionKinds = []Kind{Self, Bot, User}

// Author is the minimal identity/flag surface classification needs from a
// message author. Platform-native author structs are adapted to this before
// calling Classify.
type Author struct {
	ID       string
	Bot      bool
	System   bool
	WebhookID string // non-empty means the message was posted via webhook
}

// Classify determines the sender kind of a message-carrying event. botID is
// the bridge's own bot user id, latched at ready time (spec §3: "the bot's
// own identifier is known before any non-ready dispatch").
//
// Decision order (first match wins, per spec §4.1):
//  1. author.ID == botID                  -> Self
//  2. author.WebhookID != ""              -> Webhook
//  3. author.System                       -> System
//  4. author.Bot                          -> Bot
//  5. otherwise                           -> User
func Classify(author Author, botID string) Kind {
	switch {
	case author.ID == botID:
		return Self
	case author.WebhookID != "":
		return Webhook
	case author.System:
		return System
	case author.Bot:
		return Bot
	default:
		return User
	}
}

// ClassifyReaction determines the sender kind of a reaction event. The
// webhook/system rules do not apply to reactions (platform reactions are
// never attributed to a webhook or system author), so this collapses to
// {Self, Bot, User}.
func ClassifyReaction(author Author, botID string) Kind {
	switch {
	case author.ID == botID:
		return Self
	case author.Bot:
		return Bot
	default:
		return User
	}
}
