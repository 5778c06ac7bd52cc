package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gatehook/internal/channelinfo"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

type call struct {
	op      string
	channel string
	message string
	content string
	mention bool
	emoji   string
	name    string
	archive int
}

type fakeSession struct {
	calls              []call
	failOn             map[string]error
	threadAlreadyExErr error
	existingThreadID   string
	createdThreadID    string
}

func (f *fakeSession) ReplyToMessage(ctx context.Context, channelID, messageID, content string, mention bool) error {
	f.calls = append(f.calls, call{op: "reply", channel: channelID, message: messageID, content: content, mention: mention})
	return f.failOn["reply"]
}

func (f *fakeSession) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	f.calls = append(f.calls, call{op: "react", channel: channelID, message: messageID, emoji: emoji})
	return f.failOn["react"]
}

func (f *fakeSession) GetMessageThread(ctx context.Context, channelID, messageID string) (string, bool, error) {
	f.calls = append(f.calls, call{op: "get_message", channel: channelID, message: messageID})
	if f.existingThreadID == "" {
		return "", false, nil
	}
	return f.existingThreadID, true, nil
}

func (f *fakeSession) CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveDuration int) (string, error) {
	f.calls = append(f.calls, call{op: "create_thread", channel: channelID, message: messageID, name: name, archive: autoArchiveDuration})
	if err := f.failOn["create_thread"]; err != nil {
		return "", err
	}
	return f.createdThreadID, nil
}

func (f *fakeSession) SendMessage(ctx context.Context, channelID, content string) error {
	f.calls = append(f.calls, call{op: "send", channel: channelID, content: content})
	return f.failOn["send"]
}

func (f *fakeSession) IsThreadAlreadyExists(err error) bool {
	return f.threadAlreadyExErr != nil && errors.Is(err, f.threadAlreadyExErr)
}

func newExecutor(t *testing.T, session *fakeSession, channelTypes map[string]discordgo.ChannelType) *Executor {
	t.Helper()
	cache := map[string]*discordgo.Channel{}
	for id, typ := range channelTypes {
		cache[id] = &discordgo.Channel{ID: id, Type: typ}
	}
	provider := channelinfo.New(&fakeReader{cache: cache}, nil)
	return New(session, provider, nil)
}

type fakeReader struct {
	cache map[string]*discordgo.Channel
}

func (f *fakeReader) StateChannel(channelID string) (*discordgo.Channel, bool) {
	ch, ok := f.cache[channelID]
	return ch, ok
}

func (f *fakeReader) RESTChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return nil, errors.New("not found")
}

func TestExecute_ReplyTruncatesAndPassesMention(t *testing.T) {
	session := &fakeSession{}
	exec := newExecutor(t, session, nil)

	long := make([]byte, 2500)
	for i := range long {
		long[i] = 'x'
	}
	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionReply, Content: string(long), Mention: true},
	})

	if len(session.calls) != 1 || session.calls[0].op != "reply" {
		t.Fatalf("expected one reply call, got %+v", session.calls)
	}
	if !session.calls[0].mention {
		t.Errorf("expected mention=true to be passed through")
	}
	if len([]rune(session.calls[0].content)) != 2000 {
		t.Errorf("expected content truncated to 2000 codepoints, got %d", len([]rune(session.calls[0].content)))
	}
}

func TestExecute_OrderPreservedAndFailureDoesNotAbort(t *testing.T) {
	session := &fakeSession{failOn: map[string]error{"reply": errors.New("boom")}}
	exec := newExecutor(t, session, nil)

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionReply, Content: "hello"},
		{Type: webhook.ActionReact, Emoji: "👍"},
	})

	if len(session.calls) != 2 {
		t.Fatalf("expected both actions to run despite first failing, got %d calls", len(session.calls))
	}
	if session.calls[0].op != "reply" || session.calls[1].op != "react" {
		t.Errorf("expected order reply,react — got %+v", session.calls)
	}
}

func TestExecute_ThreadInDM_NotSupported(t *testing.T) {
	session := &fakeSession{}
	exec := newExecutor(t, session, nil)

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: ""}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "x"},
	})

	if len(session.calls) != 0 {
		t.Errorf("expected no REST calls for thread action in DM, got %+v", session.calls)
	}
}

func TestExecute_ThreadOnExistingThreadChannel_SendsWithoutCreating(t *testing.T) {
	session := &fakeSession{}
	exec := newExecutor(t, session, map[string]discordgo.ChannelType{"c": discordgo.ChannelType(11)})

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "x"},
	})

	if len(session.calls) != 1 || session.calls[0].op != "send" {
		t.Fatalf("expected a single send call, got %+v", session.calls)
	}
	if session.calls[0].channel != "c" {
		t.Errorf("expected send to target channel c directly, got %q", session.calls[0].channel)
	}
}

func TestExecute_ThreadCreatesWithDerivedName(t *testing.T) {
	session := &fakeSession{createdThreadID: "t1"}
	exec := newExecutor(t, session, map[string]discordgo.ChannelType{"c": discordgo.ChannelTypeGuildText})

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g", SourceContent: "\nmy topic\nmore"}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "discuss"},
	})

	if len(session.calls) != 2 {
		t.Fatalf("expected create_thread then send, got %+v", session.calls)
	}
	if session.calls[0].op != "create_thread" || session.calls[0].name != "my topic" {
		t.Errorf("expected thread name derived from source content, got %+v", session.calls[0])
	}
	if session.calls[0].archive != defaultArchiveDuration {
		t.Errorf("expected default archive duration %d, got %d", defaultArchiveDuration, session.calls[0].archive)
	}
	if session.calls[1].op != "send" || session.calls[1].channel != "t1" {
		t.Errorf("expected send into created thread t1, got %+v", session.calls[1])
	}
}

func TestExecute_ThreadExplicitNameTruncated(t *testing.T) {
	session := &fakeSession{createdThreadID: "t1"}
	exec := newExecutor(t, session, map[string]discordgo.ChannelType{"c": discordgo.ChannelTypeGuildText})

	longName := ""
	for i := 0; i < 150; i++ {
		longName += "n"
	}
	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "x", Name: longName},
	})

	if len([]rune(session.calls[0].name)) != 100 {
		t.Errorf("expected explicit name truncated to 100 codepoints, got %d", len([]rune(session.calls[0].name)))
	}
}

func TestExecute_ThreadInvalidArchiveDurationDefaults(t *testing.T) {
	session := &fakeSession{createdThreadID: "t1"}
	exec := newExecutor(t, session, map[string]discordgo.ChannelType{"c": discordgo.ChannelTypeGuildText})

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "x", Name: "n", AutoArchiveDuration: 999},
	})

	if session.calls[0].archive != defaultArchiveDuration {
		t.Errorf("expected invalid archive duration to default to %d, got %d", defaultArchiveDuration, session.calls[0].archive)
	}
}

func TestExecute_ThreadAlreadyExists_RoutesToExistingThread(t *testing.T) {
	sentinel := errors.New("already exists")
	session := &fakeSession{
		failOn:             map[string]error{"create_thread": sentinel},
		threadAlreadyExErr: sentinel,
		existingThreadID:   "existing-thread",
	}
	exec := newExecutor(t, session, map[string]discordgo.ChannelType{"c": discordgo.ChannelTypeGuildText})

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionThread, Content: "x", Name: "n"},
	})

	last := session.calls[len(session.calls)-1]
	if last.op != "send" || last.channel != "existing-thread" {
		t.Errorf("expected content routed to existing thread, got %+v", session.calls)
	}
}

func TestExecute_UnknownActionTypeIsSkipped(t *testing.T) {
	session := &fakeSession{}
	exec := newExecutor(t, session, nil)

	exec.Execute(context.Background(), Target{ChannelID: "c", MessageID: "m", GuildID: "g"}, []webhook.Action{
		{Type: webhook.ActionUnknown},
		{Type: webhook.ActionReact, Emoji: "x"},
	})

	if len(session.calls) != 1 || session.calls[0].op != "react" {
		t.Errorf("expected unknown action skipped and react to still run, got %+v", session.calls)
	}
}
