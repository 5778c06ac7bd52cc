package actions

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// codeThreadAlreadyExists is the Discord API error code returned when
// starting a thread from a message that already has one (spec §4.6).
const codeThreadAlreadyExists = 160004

// DiscordSession adapts a live *discordgo.Session to the actions.Session
// interface.
type DiscordSession struct {
	session *discordgo.Session
}

// NewDiscordSession wraps session for use by Executor.
func NewDiscordSession(session *discordgo.Session) *DiscordSession {
	return &DiscordSession{session: session}
}

// ReplyToMessage implements Session's "reply to message in channel"
// operation. mention=true notifies the original author; mention=false
// still renders as a reply but suppresses the ping.
func (s *DiscordSession) ReplyToMessage(ctx context.Context, channelID, messageID, content string, mention bool) error {
	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: mention,
		},
	}, discordgo.WithContext(ctx))
	return err
}

// AddReaction implements Session's "add reaction" operation. emoji is
// either a bare unicode emoji or a "name:id" custom emoji reference, both
// of which discordgo.Session.MessageReactionAdd accepts directly.
func (s *DiscordSession) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return s.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

// GetMessageThread implements Session's "get message" + "locate existing
// thread" step used when thread creation reports ThreadAlreadyExists.
func (s *DiscordSession) GetMessageThread(ctx context.Context, channelID, messageID string) (string, bool, error) {
	msg, err := s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return "", false, err
	}
	if msg.Thread == nil {
		return "", false, nil
	}
	return msg.Thread.ID, true, nil
}

// CreateThreadFromMessage implements Session's "create thread from
// message" operation.
func (s *DiscordSession) CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveDuration int) (string, error) {
	thread, err := s.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: autoArchiveDuration,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

// SendMessage implements Session's "send message to channel" operation,
// used both for posting into a thread and for appending to an existing
// thread when no creation was needed.
func (s *DiscordSession) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := s.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

// IsThreadAlreadyExists reports whether err is Discord's "thread already
// exists for this message" REST error.
func (s *DiscordSession) IsThreadAlreadyExists(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		return restErr.Message != nil && restErr.Message.Code == codeThreadAlreadyExists
	}
	return false
}
