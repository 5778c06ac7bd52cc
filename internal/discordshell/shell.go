package discordshell

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/gatehook/internal/bridge"
	"github.com/nextlevelbuilder/gatehook/internal/config"
)

// Shell owns the discordgo session: building it with the minimal computed
// intent set, registering only the handlers for configured event kinds, and
// opening/closing the gateway connection (spec §4.7/§5). It holds no
// pipeline logic of its own — every handler it registers is a direct
// forward to the corresponding bridge.Bridge method.
type Shell struct {
	session *discordgo.Session
	log     *slog.Logger
}

// NewSession creates the discordgo session and sets the minimal intents
// ComputeIntents derives from cfg. Split out from New so callers can build
// the session first, wire the session-dependent adapters (actions.Session,
// channelinfo.Reader) into a Bridge, and only then register handlers.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("discordshell: create session: %w", err)
	}
	session.Identify.Intents = ComputeIntents(cfg)
	return session, nil
}

// New wraps an already-constructed session and registers handlers for
// every configured event kind, each a direct forward to the matching
// bridge.Bridge method.
func New(session *discordgo.Session, cfg *config.Config, b *bridge.Bridge, log *slog.Logger) (*Shell, error) {
	if log == nil {
		log = slog.Default()
	}

	// Ready/resumed are always registered: the bridge needs ready to latch
	// the bot identity and materialize filters regardless of whether the
	// ready/resumed events are themselves forwarded (spec §4.7 point 1).
	session.AddHandler(b.HandleReady)
	session.AddHandler(b.HandleResumed)

	if !cfg.MessageDirect.Disabled() || !cfg.MessageGuild.Disabled() {
		session.AddHandler(b.HandleMessage)
	}
	if !cfg.MessageUpdateDirect.Disabled() || !cfg.MessageUpdateGuild.Disabled() {
		session.AddHandler(b.HandleMessageUpdate)
	}
	if !cfg.MessageDeleteDirect.Disabled() || !cfg.MessageDeleteGuild.Disabled() {
		session.AddHandler(b.HandleMessageDelete)
	}
	if !cfg.MessageDeleteBulkGuild.Disabled() {
		session.AddHandler(b.HandleMessageDeleteBulk)
	}
	if !cfg.ReactionAddDirect.Disabled() || !cfg.ReactionAddGuild.Disabled() {
		session.AddHandler(b.HandleReactionAdd)
	}
	if !cfg.ReactionRemoveDirect.Disabled() || !cfg.ReactionRemoveGuild.Disabled() {
		session.AddHandler(b.HandleReactionRemove)
	}

	return &Shell{session: session, log: log}, nil
}

// Open starts the gateway connection. Blocking work after Open should wait
// on a signal/context, as the discordgo event loop itself runs in its own
// goroutines.
func (sh *Shell) Open() error {
	if err := sh.session.Open(); err != nil {
		return fmt.Errorf("discordshell: open gateway session: %w", err)
	}
	sh.log.Info("discordshell: gateway session open")
	return nil
}

// Close closes the gateway connection.
func (sh *Shell) Close() error {
	if err := sh.session.Close(); err != nil {
		return fmt.Errorf("discordshell: close gateway session: %w", err)
	}
	return nil
}

// Session returns the underlying discordgo session, for building the
// adapters (actions.DiscordSession, channelinfo.SessionReader) that need a
// live session.
func (sh *Shell) Session() *discordgo.Session {
	return sh.session
}
