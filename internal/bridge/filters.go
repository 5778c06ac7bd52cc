package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/nextlevelbuilder/gatehook/internal/config"
	"github.com/nextlevelbuilder/gatehook/internal/filterpolicy"
)

// directGuild holds the two filters for an event kind that is filterable in
// both contexts (spec §3: "two distinct policies per filterable event kind:
// one for direct, one for guild").
type directGuild struct {
	Direct *filterpolicy.Filter
	Guild  *filterpolicy.Filter
}

// FilterSet is the materialized, bot-id-bound set of filters for every
// filterable event kind, built once at ready (spec §4.7 point 1). Until a
// FilterSet is available from the FilterCell, no filtered event may be
// processed (spec §3's invariant).
type FilterSet struct {
	BotID string

	Message       directGuild
	MessageUpdate directGuild
	MessageDelete directGuild

	MessageDeleteBulkGuild *filterpolicy.Filter

	ReactionAdd    directGuild
	ReactionRemove directGuild
}

// buildFilterSet binds every configured policy to botID, producing the
// FilterSet that HandleReady publishes into the one-shot FilterCell.
func buildFilterSet(cfg *config.Config, botID string) *FilterSet {
	return &FilterSet{
		BotID: botID,
		Message: directGuild{
			Direct: cfg.MessageDirect.Bind(botID),
			Guild:  cfg.MessageGuild.Bind(botID),
		},
		MessageUpdate: directGuild{
			Direct: cfg.MessageUpdateDirect.Bind(botID),
			Guild:  cfg.MessageUpdateGuild.Bind(botID),
		},
		MessageDelete: directGuild{
			Direct: cfg.MessageDeleteDirect.Bind(botID),
			Guild:  cfg.MessageDeleteGuild.Bind(botID),
		},
		MessageDeleteBulkGuild: cfg.MessageDeleteBulkGuild.Bind(botID),
		ReactionAdd: directGuild{
			Direct: cfg.ReactionAddDirect.Bind(botID),
			Guild:  cfg.ReactionAddGuild.Bind(botID),
		},
		ReactionRemove: directGuild{
			Direct: cfg.ReactionRemoveDirect.Bind(botID),
			Guild:  cfg.ReactionRemoveGuild.Bind(botID),
		},
	}
}

// FilterCell is a write-once slot for the FilterSet: it is populated exactly
// once, on the first ready event, and never reinitialized (spec §5/§9: the
// bot identifier is assumed stable for the session, and this must not be
// modeled as mutable global state). The process entry point creates the
// FilterCell and hands it to the event bridge (C7), which writes into it
// from its ready handler; every other bridge handler reads from it before
// processing an event. The gateway handler shell (C9) neither holds nor
// reads the cell.
type FilterCell struct {
	once sync.Once
	val  atomic.Pointer[FilterSet]
}

// NewFilterCell creates an empty cell.
func NewFilterCell() *FilterCell {
	return &FilterCell{}
}

// set publishes fs into the cell. Only the first call has any effect —
// subsequent ready events (e.g. after a gateway reconnect) must not
// reinitialize the filters, since the bot's identifier is assumed stable
// for the life of the process.
func (c *FilterCell) set(fs *FilterSet) {
	c.once.Do(func() {
		c.val.Store(fs)
	})
}

// Get returns the published FilterSet, or (nil, false) if ready has not yet
// fired. Handlers for non-ready events that observe false should treat the
// event as arriving before a correctly negotiated session's ready — spec §9
// notes this "should not occur" but handlers short-circuit defensively
// rather than panic.
func (c *FilterCell) Get() (*FilterSet, bool) {
	v := c.val.Load()
	return v, v != nil
}
