package bridge

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gatehook/internal/actions"
	"github.com/nextlevelbuilder/gatehook/internal/classify"
	"github.com/nextlevelbuilder/gatehook/internal/payload"
)

// HandleReactionAdd implements spec §4.7 point 7: classify the reacting
// user (collapsed Self/Bot/User universe), filter, enrich, dispatch, and
// run any returned actions against the reacted-to message. Reactions carry
// no message content of their own, so the action target's SourceContent is
// empty — a thread action on a reaction always falls back to the default
// "Thread" name unless the webhook supplies one explicitly.
func (b *Bridge) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.handleReaction(s, r.MessageReaction, fsReactionAdd, payload.KindReactionAdd)
}

// HandleReactionRemove implements spec §4.7 point 8, mirroring
// HandleReactionAdd.
func (b *Bridge) HandleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.handleReaction(s, r.MessageReaction, fsReactionRemove, payload.KindReactionRemove)
}

// reactionSelector picks the direct/guild filter pair for a reaction kind
// out of a FilterSet.
type reactionSelector func(*FilterSet) directGuild

func fsReactionAdd(fs *FilterSet) directGuild    { return fs.ReactionAdd }
func fsReactionRemove(fs *FilterSet) directGuild { return fs.ReactionRemove }

func (b *Bridge) handleReaction(s *discordgo.Session, r *discordgo.MessageReaction, sel reactionSelector, kind payload.Kind) {
	fs, ok := b.cell.Get()
	if !ok {
		b.log.Warn("bridge: reaction event arrived before ready, dropping")
		return
	}

	id := correlationID()
	log := b.log.With("req_id", id, "event", string(kind), "channel_id", r.ChannelID)

	pair := sel(fs)
	filter := pair.Direct
	if r.GuildID != "" {
		filter = pair.Guild
	}
	author := reactionAuthor(r)
	if !filter.ShouldProcessReaction(author) {
		return
	}

	ctx := context.Background()
	channel := b.enrichChannel(ctx, log, r.GuildID, r.ChannelID)

	body, err := payload.Build(kind, r, channel)
	if err != nil {
		log.Error("bridge: failed to build payload", "error", err)
		return
	}

	resp, err := b.sender.Send(ctx, kind, body)
	if err != nil {
		log.Warn("bridge: webhook delivery failed", "error", err)
		return
	}
	if resp == nil || len(resp.Actions) == 0 {
		return
	}

	target := actions.Target{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
	}
	b.executor.Execute(ctx, target, resp.Actions)
}

// reactionAuthor adapts a discordgo reaction's identity fields into
// classify.Author. A reaction's Member is only populated in guild context;
// in a DM the Bot flag is unavailable and defaults to false, since
// discordgo does not surface an author object on reaction events outside
// of Member.
func reactionAuthor(r *discordgo.MessageReaction) classify.Author {
	author := classify.Author{ID: r.UserID}
	if r.Member != nil && r.Member.User != nil {
		author.Bot = r.Member.User.Bot
	}
	return author
}
