package bridge

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gatehook/internal/actions"
	"github.com/nextlevelbuilder/gatehook/internal/classify"
	"github.com/nextlevelbuilder/gatehook/internal/payload"
)

// HandleMessage implements spec §4.7 point 3 (message create): classify the
// author, apply the direct/guild filter, enrich with a channel snapshot,
// dispatch the payload, and run any returned actions against the source
// message.
func (b *Bridge) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	fs, ok := b.cell.Get()
	if !ok {
		b.log.Warn("bridge: message event arrived before ready, dropping")
		return
	}

	id := correlationID()
	log := b.log.With("req_id", id, "event", "message", "channel_id", m.ChannelID)

	filter := fs.Message.Direct
	if m.GuildID != "" {
		filter = fs.Message.Guild
	}
	author := authorOf(m.Author, m.WebhookID)
	if !filter.ShouldProcessMessage(author) {
		return
	}

	ctx := context.Background()
	channel := b.enrichChannel(ctx, log, m.GuildID, m.ChannelID)

	body, err := payload.Build(payload.KindMessage, m.Message, channel)
	if err != nil {
		log.Error("bridge: failed to build payload", "error", err)
		return
	}

	resp, err := b.sender.Send(ctx, payload.KindMessage, body)
	if err != nil {
		log.Warn("bridge: webhook delivery failed", "error", err)
		return
	}
	if resp == nil || len(resp.Actions) == 0 {
		return
	}

	target := actions.Target{
		MessageID:     m.ID,
		ChannelID:     m.ChannelID,
		GuildID:       m.GuildID,
		SourceContent: m.Content,
	}
	b.executor.Execute(ctx, target, resp.Actions)
}

// HandleMessageUpdate implements spec §4.7 point 4: forward only, gated
// purely by whether the event kind is configured at all — edits carry no
// single stable "author did this" classification worth filtering on, and
// message_update never triggers action execution (spec §4.7: "forward
// only; no filter, no actions").
func (b *Bridge) HandleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	fs, ok := b.cell.Get()
	if !ok {
		return
	}
	direct := !fs.MessageUpdate.Direct.Disabled()
	guild := !fs.MessageUpdate.Guild.Disabled()
	enabled := direct
	if m.GuildID != "" {
		enabled = guild
	}
	if !enabled {
		return
	}

	id := correlationID()
	log := b.log.With("req_id", id, "event", "message_update", "channel_id", m.ChannelID)

	ctx := context.Background()
	channel := b.enrichChannel(ctx, log, m.GuildID, m.ChannelID)
	b.forwardWithChannel(ctx, log, payload.KindMessageUpdate, m, channel)
}

// HandleMessageDelete implements spec §4.7 point 5: forward only, gated by
// configuration, no channel enrichment (a deleted message's channel is not
// guaranteed to still be resolvable, and spec §4.7 does not require it).
func (b *Bridge) HandleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	fs, ok := b.cell.Get()
	if !ok {
		return
	}
	enabled := !fs.MessageDelete.Direct.Disabled()
	if m.GuildID != "" {
		enabled = !fs.MessageDelete.Guild.Disabled()
	}
	if !enabled {
		return
	}

	id := correlationID()
	log := b.log.With("req_id", id, "event", "message_delete", "channel_id", m.ChannelID)
	b.forwardOnly(context.Background(), log, payload.KindMessageDelete, m)
}

// HandleMessageDeleteBulk implements spec §4.7 point 6: guild-only,
// forward only.
func (b *Bridge) HandleMessageDeleteBulk(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	fs, ok := b.cell.Get()
	if !ok {
		return
	}
	if fs.MessageDeleteBulkGuild.Disabled() {
		return
	}

	id := correlationID()
	log := b.log.With("req_id", id, "event", "message_delete_bulk", "channel_id", m.ChannelID)
	b.forwardOnly(context.Background(), log, payload.KindMessageDeleteBulk, m)
}

// enrichChannel looks up a channel snapshot for payload enrichment.
// Enrichment is guild-only per spec §3/§4.7: a direct-message event
// (guildID == "") never gets a "channel" key, even though the REST
// fallback would happily resolve a DM channel id too. A lookup failure
// returns nil (no enrichment) rather than propagating an error — spec
// §7's ChannelLookupError is recovered locally.
func (b *Bridge) enrichChannel(ctx context.Context, log *slog.Logger, guildID, channelID string) *discordgo.Channel {
	if guildID == "" {
		return nil
	}
	ch, err := b.channels.GetChannel(ctx, channelID)
	if err != nil {
		log.Info("bridge: channel enrichment unavailable, proceeding without it", "error", err)
		return nil
	}
	return ch
}

// authorOf adapts a discordgo message author plus webhook id into
// classify.Author. webhookID is passed separately because discordgo surfaces
// it on the message, not the author.
func authorOf(author *discordgo.User, webhookID string) classify.Author {
	if author == nil {
		return classify.Author{WebhookID: webhookID}
	}
	return classify.Author{
		ID:        author.ID,
		Bot:       author.Bot,
		System:    author.System,
		WebhookID: webhookID,
	}
}
