package channelinfo

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionReader adapts a live *discordgo.Session to the Reader interface.
type SessionReader struct {
	session *discordgo.Session
}

// NewSessionReader wraps session for use by Provider.
func NewSessionReader(session *discordgo.Session) *SessionReader {
	return &SessionReader{session: session}
}

// StateChannel implements Reader by searching the gateway cache's guild list
// directly, matching spec §4.3's described algorithm. The embedded RWMutex
// on discordgo's State is held only long enough to copy the matching
// channel struct by value into cp; the lock is released (via defer) after
// that copy is captured, so no lock is ever held across the caller's
// subsequent awaits. The copy is shallow: the returned Channel's own fields
// are independent of the cache, but its slice and pointer fields (such as
// PermissionOverwrites or Messages) still refer to the cache's memory.
func (r *SessionReader) StateChannel(channelID string) (*discordgo.Channel, bool) {
	state := r.session.State
	state.RLock()
	defer state.RUnlock()

	for _, guild := range state.Guilds {
		for _, ch := range guild.Channels {
			if ch.ID == channelID {
				cp := *ch
				return &cp, true
			}
		}
	}
	return nil, false
}

// RESTChannel implements Reader via the platform's "get channel" REST
// operation.
func (r *SessionReader) RESTChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return r.session.Channel(channelID, discordgo.WithContext(ctx))
}
