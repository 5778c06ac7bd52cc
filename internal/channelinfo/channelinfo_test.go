package channelinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeReader struct {
	cache   map[string]*discordgo.Channel
	restErr error
	rest    map[string]*discordgo.Channel
	restHit int
}

func (f *fakeReader) StateChannel(channelID string) (*discordgo.Channel, bool) {
	ch, ok := f.cache[channelID]
	return ch, ok
}

func (f *fakeReader) RESTChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	f.restHit++
	if f.restErr != nil {
		return nil, f.restErr
	}
	ch, ok := f.rest[channelID]
	if !ok {
		return nil, errors.New("not found")
	}
	return ch, nil
}

func TestGetChannel_CacheHit(t *testing.T) {
	reader := &fakeReader{cache: map[string]*discordgo.Channel{
		"2": {ID: "2", Type: discordgo.ChannelTypeGuildText},
	}}
	p := New(reader, nil)

	ch, err := p.GetChannel(context.Background(), "2")
	if err != nil {
		t.Fatalf("GetChannel: unexpected error: %v", err)
	}
	if ch.ID != "2" {
		t.Errorf("GetChannel: got channel %q, want 2", ch.ID)
	}
	if reader.restHit != 0 {
		t.Errorf("GetChannel: cache hit should not fall through to REST, restHit=%d", reader.restHit)
	}
}

func TestGetChannel_CacheMiss_RESTFallback(t *testing.T) {
	reader := &fakeReader{
		cache: map[string]*discordgo.Channel{},
		rest: map[string]*discordgo.Channel{
			"5": {ID: "5", Type: discordgo.ChannelTypeGuildText},
		},
	}
	p := New(reader, nil)

	ch, err := p.GetChannel(context.Background(), "5")
	if err != nil {
		t.Fatalf("GetChannel: unexpected error: %v", err)
	}
	if ch.ID != "5" {
		t.Errorf("GetChannel: got channel %q, want 5", ch.ID)
	}
	if reader.restHit != 1 {
		t.Errorf("GetChannel: expected exactly one REST fallback call, got %d", reader.restHit)
	}
}

func TestGetChannel_RESTFailure(t *testing.T) {
	reader := &fakeReader{cache: map[string]*discordgo.Channel{}, restErr: errors.New("network down")}
	p := New(reader, nil)

	_, err := p.GetChannel(context.Background(), "9")
	if err == nil {
		t.Fatalf("GetChannel: expected error on REST failure")
	}
	if !errors.Is(err, ErrChannelLookup) {
		t.Errorf("GetChannel: error = %v, want wrapped ErrChannelLookup", err)
	}
}

func TestIsThread(t *testing.T) {
	tests := []struct {
		name     string
		chanType discordgo.ChannelType
		want     bool
	}{
		{"text", discordgo.ChannelTypeGuildText, false},
		{"voice", discordgo.ChannelTypeGuildVoice, false},
		{"announcement thread", discordgo.ChannelType(10), true},
		{"public thread", discordgo.ChannelType(11), true},
		{"private thread", discordgo.ChannelType(12), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{cache: map[string]*discordgo.Channel{
				"1": {ID: "1", Type: tt.chanType},
			}}
			p := New(reader, nil)
			if got := p.IsThread(context.Background(), "1"); got != tt.want {
				t.Errorf("IsThread(type=%d) = %v, want %v", tt.chanType, got, tt.want)
			}
		})
	}
}

func TestIsThread_LookupFailureIsNotAThread(t *testing.T) {
	reader := &fakeReader{cache: map[string]*discordgo.Channel{}, restErr: errors.New("down")}
	p := New(reader, nil)
	if p.IsThread(context.Background(), "missing") {
		t.Errorf("IsThread: expected false on lookup failure")
	}
}
