// Package discordshell owns the discordgo session lifecycle (C9): computing
// the minimal gateway intent set a configuration actually needs, registering
// only the handlers for configured event kinds, and opening/closing the
// connection — grounded on the teacher's internal/channels/discord/discord.go
// session setup.
package discordshell

import (
	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gatehook/internal/config"
)

// ComputeIntents derives the minimal discordgo gateway intent set from which
// event kinds are configured, per spec §4.7's intent table: requesting more
// than is needed means receiving (and silently dropping) events nobody
// asked for, so each intent bit is gated behind the policies that need it.
func ComputeIntents(cfg *config.Config) discordgo.Intent {
	var intents discordgo.Intent

	messageDirect := !cfg.MessageDirect.Disabled() || !cfg.MessageUpdateDirect.Disabled() || !cfg.MessageDeleteDirect.Disabled()
	messageGuild := !cfg.MessageGuild.Disabled() || !cfg.MessageUpdateGuild.Disabled() || !cfg.MessageDeleteGuild.Disabled() || !cfg.MessageDeleteBulkGuild.Disabled()
	reactionDirect := !cfg.ReactionAddDirect.Disabled() || !cfg.ReactionRemoveDirect.Disabled()
	reactionGuild := !cfg.ReactionAddGuild.Disabled() || !cfg.ReactionRemoveGuild.Disabled()
	messageContent := !cfg.MessageDirect.Disabled() || !cfg.MessageGuild.Disabled() || !cfg.MessageUpdateDirect.Disabled() || !cfg.MessageUpdateGuild.Disabled()

	if messageDirect {
		intents |= discordgo.IntentsDirectMessages
	}
	if messageGuild {
		intents |= discordgo.IntentsGuildMessages
	}
	if messageContent {
		// Message content is gated on the privileged intent regardless of
		// direct/guild split — Discord does not offer a narrower grant. Only
		// message create/update payloads carry content, so delete-only
		// configurations do not request it.
		intents |= discordgo.IntentsMessageContent
	}
	if reactionDirect {
		intents |= discordgo.IntentsDirectMessageReactions
	}
	if reactionGuild {
		intents |= discordgo.IntentsGuildMessageReactions
	}
	if messageGuild || reactionGuild {
		// GUILDS is what actually makes discordgo's state cache populate
		// (GUILD_CREATE delivery depends on it) — without it, channelinfo's
		// cache-first lookup (spec §4.3) always misses for guild channels
		// and every lookup falls through to REST.
		intents |= discordgo.IntentsGuilds
	}

	return intents
}
