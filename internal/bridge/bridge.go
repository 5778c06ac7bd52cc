// Package bridge is the event pipeline orchestrator of spec §4.7 (C7): for
// each inbound gateway event it runs classify → filter → enrich → build →
// dispatch → execute, as described in spec §2's data-flow summary.
package bridge

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/nextlevelbuilder/gatehook/internal/actions"
	"github.com/nextlevelbuilder/gatehook/internal/channelinfo"
	"github.com/nextlevelbuilder/gatehook/internal/config"
	"github.com/nextlevelbuilder/gatehook/internal/payload"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

// Bridge wires the sender kind classifier, filter policies, channel info
// provider, payload builder, webhook sender, and action executor into the
// per-event pipeline. Bridge itself holds no mutable state past the
// ready-latched FilterCell (spec §5: "the bridge itself owns no mutable
// state past the ready latch").
type Bridge struct {
	cfg      *config.Config
	cell     *FilterCell
	sender   *webhook.Sender
	channels *channelinfo.Provider
	executor *actions.Executor
	log      *slog.Logger
}

// New builds a Bridge. cell is the write-once FilterCell that HandleReady
// fills and every other handler reads. The gateway handler shell (C9) does
// not read the cell: it decides which handlers to register from cfg.
func New(cfg *config.Config, cell *FilterCell, sender *webhook.Sender, channels *channelinfo.Provider, executor *actions.Executor, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{cfg: cfg, cell: cell, sender: sender, channels: channels, executor: executor, log: log}
}

// correlationID returns a short id that a bridge handler attaches to its own
// log lines for one inbound event, so those lines can be told apart even
// though many events are in flight concurrently (spec §5's concurrency
// model). Log lines from the webhook sender, the channel info provider and
// the action executor go through their own loggers and do not carry it.
func correlationID() string {
	return uuid.NewString()[:8]
}

// HandleReady implements spec §4.7 point 1: latch the bot identifier,
// materialize every configured policy into a bound filter, publish the
// result into the one-shot cell, and forward the ready payload if
// configured — with no filtering and no action execution, since a ready
// event has no originating sender or message to act on.
func (b *Bridge) HandleReady(s *discordgo.Session, r *discordgo.Ready) {
	id := correlationID()
	log := b.log.With("req_id", id, "event", "ready")

	botID := ""
	if r.User != nil {
		botID = r.User.ID
	}
	b.cell.set(buildFilterSet(b.cfg, botID))
	log.Info("ready: bot identity latched, filters materialized", "bot_id", botID)

	if b.cfg.Ready.Disabled() {
		return
	}
	b.forwardOnly(context.Background(), log, payload.KindReady, r)
}

// HandleResumed implements spec §4.7 point 2: forward the resumed payload
// if configured, no filtering, no actions.
func (b *Bridge) HandleResumed(s *discordgo.Session, r *discordgo.Resumed) {
	id := correlationID()
	log := b.log.With("req_id", id, "event", "resumed")

	if b.cfg.Resumed.Disabled() {
		return
	}
	b.forwardOnly(context.Background(), log, payload.KindResumed, r)
}

// forwardOnly builds a channel-less payload and dispatches it, discarding
// any returned actions — used by events that carry no sender to classify
// and no action target (ready, resumed, message_delete, message_delete_bulk
// per spec §4.7 points 1,2,5,6).
func (b *Bridge) forwardOnly(ctx context.Context, log *slog.Logger, kind payload.Kind, native any) {
	b.forwardWithChannel(ctx, log, kind, native, nil)
}

// forwardWithChannel is forwardOnly plus an optional channel snapshot —
// used by message_update (spec §4.7 point 4), which is forward-only but
// still benefits from channel enrichment.
func (b *Bridge) forwardWithChannel(ctx context.Context, log *slog.Logger, kind payload.Kind, native any, channel *discordgo.Channel) {
	body, err := payload.Build(kind, native, channel)
	if err != nil {
		log.Error("bridge: failed to build payload", "error", err)
		return
	}
	if _, err := b.sender.Send(ctx, kind, body); err != nil {
		log.Warn("bridge: webhook delivery failed", "error", err)
	}
}
