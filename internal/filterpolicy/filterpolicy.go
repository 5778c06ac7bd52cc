// Package filterpolicy parses the per-event-kind/context configuration
// strings of spec §4.2 into allow-sets over sender kinds, and evaluates
// events against them once bound to the bridge's own bot id.
package filterpolicy

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/gatehook/internal/classify"
)

// Policy is a parsed allow-set over sender kinds for one (event kind,
// context) pair. A nil Policy (returned by Parse for an unset config
// string, or never constructed) means the event is disabled entirely.
type Policy struct {
	allow map[classify.Kind]bool
}

// Disabled reports whether this represents an unset/disabled policy. Callers
// should treat a nil *Policy the same way — Parse never returns a non-nil
// Policy for an unset config string.
func (p *Policy) Disabled() bool { return p == nil }

// Parse parses a configuration string into a Policy, per spec §4.2:
//
//	unset (raw == "", set == false) -> disabled (nil, nil)
//	"all"                           -> every sender kind
//	"" (explicitly set)             -> every kind except self
//	comma-separated list            -> exactly the named kinds
//
// set distinguishes "the environment variable was not present at all" from
// "the environment variable was present and empty", since both surface as
// raw == "" through os.LookupEnv. An unknown sender kind name in a
// comma-separated list is a ConfigError, fatal at startup per spec §7.
func Parse(raw string, set bool) (*Policy, error) {
	if !set {
		return nil, nil
	}
	if raw == "all" {
		return newPolicy(classify.All...), nil
	}
	if raw == "" {
		return newPolicy(classify.Webhook, classify.System, classify.Bot, classify.User), nil
	}

	var kinds []classify.Kind
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		kind, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return newPolicy(kinds...), nil
}

func parseKind(name string) (classify.Kind, error) {
	switch classify.Kind(name) {
	case classify.Self, classify.Webhook, classify.System, classify.Bot, classify.User:
		return classify.Kind(name), nil
	default:
		return "", fmt.Errorf("filterpolicy: unknown sender kind %q", name)
	}
}

func newPolicy(kinds ...classify.Kind) *Policy {
	allow := make(map[classify.Kind]bool, len(kinds))
	for _, k := range kinds {
		allow[k] = true
	}
	return &Policy{allow: allow}
}

// Allows reports whether kind is a member of the policy's allow-set. A nil
// (disabled) policy allows nothing.
func (p *Policy) Allows(kind classify.Kind) bool {
	if p == nil {
		return false
	}
	return p.allow[kind]
}

// Filter binds a Policy to the bridge's own bot id, producing a runtime
// filter usable by the event bridge (spec §4.2's bind operation).
type Filter struct {
	policy *Policy
	botID  string
}

// Bind produces a Filter from a policy and the bot's identifier. A nil
// policy binds to a Filter that rejects everything — callers should not
// register a handler at all when the underlying policy is disabled (spec
// §4.2), but Bind itself stays total so bridge code never needs a nil
// check at the call site.
func (p *Policy) Bind(botID string) *Filter {
	return &Filter{policy: p, botID: botID}
}

// Disabled reports whether the underlying policy is unset. Event kinds that
// are forward-only (no sender filtering) still need to know whether they
// are configured at all — spec §4.7's "forward only" events gate purely on
// this rather than on ShouldProcessMessage/ShouldProcessReaction.
func (f *Filter) Disabled() bool {
	return f == nil || f.policy.Disabled()
}

// ShouldProcessMessage classifies a message-carrying event and tests it
// against the filter's allow-set.
func (f *Filter) ShouldProcessMessage(author classify.Author) bool {
	if f == nil || f.policy.Disabled() {
		return false
	}
	kind := classify.Classify(author, f.botID)
	return f.policy.Allows(kind)
}

// ShouldProcessReaction classifies a reaction event (collapsed sender-kind
// universe) and tests it against the filter's allow-set.
func (f *Filter) ShouldProcessReaction(author classify.Author) bool {
	if f == nil || f.policy.Disabled() {
		return false
	}
	kind := classify.ClassifyReaction(author, f.botID)
	return f.policy.Allows(kind)
}
