// Package channelinfo implements the cache-first channel lookup of spec
// §4.3: check the gateway library's own guild/channel cache first, copying
// out a value snapshot before releasing any lock, and fall back to a
// rate-limited REST call on a miss. The result is never written back to the
// gateway's cache — that cache is owned by the gateway library, not by this
// bridge.
package channelinfo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// ErrChannelLookup is the sentinel wrapped by lookup failures reaching the
// REST API after a cache miss (spec §7's ChannelLookupError). The bridge
// treats it as "no enrichment" and proceeds with a channel-less payload —
// it is never fatal.
var ErrChannelLookup = errors.New("channelinfo: channel lookup failed")

// Thread channel type codes per spec §3: announcement-thread, public-thread,
// private-thread.
const (
	typeAnnouncementThread = 10
	typePublicThread       = 11
	typePrivateThread      = 12
)

// Reader abstracts the gateway session's cache and REST surface so Provider
// can be unit tested without a live discordgo.Session. NewSessionReader
// adapts a real *discordgo.Session to this interface.
type Reader interface {
	// StateChannel searches the cached guild list for channelID and, on a
	// hit, returns a copy of the Channel struct made before any internal
	// lock is released, so no lock is held across a later await (spec §5's
	// no-lock-across-suspension rule; see SessionReader.StateChannel for
	// how the copy is made while still under lock). The copy is shallow:
	// slice and pointer fields inside it still share memory with the cache.
	StateChannel(channelID string) (*discordgo.Channel, bool)

	// RESTChannel fetches the channel via the platform's REST API. Called
	// only on a cache miss.
	RESTChannel(ctx context.Context, channelID string) (*discordgo.Channel, error)
}

// Provider is the cache-first channel info lookup of spec §4.3.
type Provider struct {
	reader  Reader
	limiter *rate.Limiter
	log     *slog.Logger
}

// defaultRESTBurst and defaultRESTRate bound how often the provider will
// fall through to a REST channel fetch on a cache miss — a client-side
// backstop ahead of discordgo's own per-route bucket accounting, not a
// replacement for it (spec §1's "rate-limit-aware cache-first reads").
const (
	defaultRESTRate  = 5 // requests per second
	defaultRESTBurst = 5
)

// New builds a Provider over reader with the default REST fallback rate
// limit.
func New(reader Reader, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		reader:  reader,
		limiter: rate.NewLimiter(rate.Limit(defaultRESTRate), defaultRESTBurst),
		log:     log,
	}
}

// GetChannel resolves a channel by id: cache first, then a rate-limited
// REST fallback. A cache miss is logged at info level (spec §7:
// ChannelLookupError is "recovered locally: proceed with no channel field,
// log at info" — the miss-then-fetch itself is logged here; the provider
// only returns a wrapped ErrChannelLookup if the REST call itself fails).
func (p *Provider) GetChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, ok := p.reader.StateChannel(channelID); ok {
		return ch, nil
	}

	p.log.Info("channelinfo: cache miss, falling back to REST", "channel_id", channelID)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Join(ErrChannelLookup, err)
	}

	ch, err := p.reader.RESTChannel(ctx, channelID)
	if err != nil {
		return nil, errors.Join(ErrChannelLookup, err)
	}
	return ch, nil
}

// IsThread reports whether channelID is a thread channel (types 10/11/12).
// Lookup failures collapse to false — matching spec §4.3's
// "get_channel(id).map(type ∈ threads).unwrap_or(false)" definition, since a
// thread-target decision in the action executor must always resolve to
// something rather than propagate a lookup error.
func (p *Provider) IsThread(ctx context.Context, channelID string) bool {
	ch, err := p.GetChannel(ctx, channelID)
	if err != nil {
		p.log.Info("channelinfo: is-thread check failed, assuming not a thread", "channel_id", channelID, "error", err)
		return false
	}
	switch int(ch.Type) {
	case typeAnnouncementThread, typePublicThread, typePrivateThread:
		return true
	default:
		return false
	}
}
