// Package actions implements the back-action executor of spec §4.6:
// translating a webhook response's action list into sequential REST calls
// against the chat platform, in source order, with each action's failure
// independent of the others.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/gatehook/internal/channelinfo"
	"github.com/nextlevelbuilder/gatehook/internal/textutil"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

// ErrThreadNotSupported is returned when a thread action targets a DM (spec
// §7's ThreadNotSupported, an ActionError subtype).
var ErrThreadNotSupported = errors.New("actions: thread action not supported in direct messages")

// validArchiveDurations are the only accepted auto_archive_duration values
// (in minutes) per spec §4.6.
var validArchiveDurations = map[int]bool{60: true, 1440: true, 4320: true, 10080: true}

const defaultArchiveDuration = 1440

const (
	maxContentCodepoints = 2000
	maxNameCodepoints    = 100
)

// Session abstracts the platform REST operations the executor calls, so
// Executor can be unit tested without a live discordgo.Session. The get
// channel / is-thread operation is covered separately by channelinfo —
// Session here is exactly the remaining REST surface spec §6 lists: reply,
// add reaction, get message, create thread from message, send message.
type Session interface {
	ReplyToMessage(ctx context.Context, channelID, messageID, content string, mention bool) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	GetMessageThread(ctx context.Context, channelID, messageID string) (threadID string, ok bool, err error)
	CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveDuration int) (threadID string, err error)
	SendMessage(ctx context.Context, channelID, content string) error
	// IsThreadAlreadyExists reports whether err is the platform's
	// "thread already exists for this message" error, so Executor can
	// route content to the existing thread instead of failing (spec
	// §4.6 / §7's ThreadAlreadyExists).
	IsThreadAlreadyExists(err error) bool
}

// Target identifies what an event's back-actions apply to (spec §3's
// "action target"): the message being reacted/replied to, the channel it
// lives in, and the guild it belongs to (empty for DMs). SourceContent is
// the originating message's raw content, used to derive a thread name when
// the webhook doesn't supply one explicitly.
type Target struct {
	MessageID     string
	ChannelID     string
	GuildID       string
	SourceContent string
}

// IsGuild reports whether the target is in a guild channel (as opposed to a
// direct message), which gates whether thread actions are permitted.
func (t Target) IsGuild() bool { return t.GuildID != "" }

// Executor runs a webhook response's actions against the platform REST API.
type Executor struct {
	session  Session
	channels *channelinfo.Provider
	limiter  *rate.Limiter
	log      *slog.Logger
}

// defaultRESTRate/Burst bound action-executor REST calls the same way
// channelinfo bounds its REST fallback — a client-side backstop ahead of
// discordgo's own bucket accounting (spec §1).
const (
	defaultRESTRate  = 5
	defaultRESTBurst = 5
)

// New builds an Executor.
func New(session Session, channels *channelinfo.Provider, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		session:  session,
		channels: channels,
		limiter:  rate.NewLimiter(rate.Limit(defaultRESTRate), defaultRESTBurst),
		log:      log,
	}
}

// Execute runs actions against target in order. Each action's failure is
// logged at error level and does not prevent later actions from running
// (spec §4.6/§8's independence and ordering properties) — Execute itself
// never returns an error; callers that want failure visibility should
// inspect logs, matching spec §7's "nothing in the pipeline is fatal after
// startup".
func (e *Executor) Execute(ctx context.Context, target Target, acts []webhook.Action) {
	for i, a := range acts {
		if err := e.executeOne(ctx, target, a); err != nil {
			e.log.Error("actions: action failed, continuing with remaining actions",
				"index", i, "type", a.Type, "error", err)
		}
	}
}

func (e *Executor) executeOne(ctx context.Context, target Target, a webhook.Action) error {
	switch a.Type {
	case webhook.ActionReply:
		return e.executeReply(ctx, target, a)
	case webhook.ActionReact:
		return e.executeReact(ctx, target, a)
	case webhook.ActionThread:
		return e.executeThread(ctx, target, a)
	default:
		e.log.Warn("actions: unknown action type, skipping", "type", a.Type)
		return nil
	}
}

func (e *Executor) executeReply(ctx context.Context, target Target, a webhook.Action) error {
	content := textutil.Truncate(a.Content, maxContentCodepoints)
	if err := e.wait(ctx); err != nil {
		return err
	}
	return e.session.ReplyToMessage(ctx, target.ChannelID, target.MessageID, content, a.Mention)
}

func (e *Executor) executeReact(ctx context.Context, target Target, a webhook.Action) error {
	if err := e.wait(ctx); err != nil {
		return err
	}
	return e.session.AddReaction(ctx, target.ChannelID, target.MessageID, a.Emoji)
}

func (e *Executor) executeThread(ctx context.Context, target Target, a webhook.Action) error {
	if !target.IsGuild() {
		return ErrThreadNotSupported
	}

	content := textutil.Truncate(a.Content, maxContentCodepoints)

	if e.channels.IsThread(ctx, target.ChannelID) {
		if err := e.wait(ctx); err != nil {
			return err
		}
		return e.session.SendMessage(ctx, target.ChannelID, content)
	}

	name := a.Name
	if name != "" {
		name = textutil.TruncateName(name, maxNameCodepoints)
	} else {
		name = textutil.DeriveThreadName(target.SourceContent)
	}

	// A zero duration means the webhook omitted the field, not that it
	// supplied an invalid one — only warn for an explicit, unrecognized value.
	duration := a.AutoArchiveDuration
	switch {
	case duration == 0:
		duration = defaultArchiveDuration
	case !validArchiveDurations[duration]:
		e.log.Warn("actions: invalid auto_archive_duration, defaulting",
			"value", duration, "default", defaultArchiveDuration)
		duration = defaultArchiveDuration
	}

	if err := e.wait(ctx); err != nil {
		return err
	}
	threadID, err := e.session.CreateThreadFromMessage(ctx, target.ChannelID, target.MessageID, name, duration)
	if err != nil {
		if e.session.IsThreadAlreadyExists(err) {
			return e.postToExistingThread(ctx, target, content)
		}
		return fmt.Errorf("actions: create thread: %w", err)
	}

	if err := e.wait(ctx); err != nil {
		return err
	}
	return e.session.SendMessage(ctx, threadID, content)
}

func (e *Executor) postToExistingThread(ctx context.Context, target Target, content string) error {
	threadID, ok, err := e.session.GetMessageThread(ctx, target.ChannelID, target.MessageID)
	if err != nil {
		return fmt.Errorf("actions: thread already exists, but fetching source message failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("actions: thread already exists, but source message has no resolvable thread")
	}
	if err := e.wait(ctx); err != nil {
		return err
	}
	return e.session.SendMessage(ctx, threadID, content)
}

func (e *Executor) wait(ctx context.Context) error {
	return e.limiter.Wait(ctx)
}
