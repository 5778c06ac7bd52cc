// Package config loads gatehook's configuration from the process
// environment (spec §6). Loading from the environment is itself an
// out-of-scope ambient concern per spec §1 ("configuration loading from the
// process environment" is named as an external collaborator) — this
// package exists only so the rest of the bridge has a typed Config to read,
// built the way the teacher repo's own env overlay is built
// (internal/config/config_load.go's envStr-style helpers).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/nextlevelbuilder/gatehook/internal/filterpolicy"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

// ConfigError reports a fatal problem with the process environment: a
// missing required variable, an invalid URL, or an unknown sender kind
// named in a filter policy string. Fatal at startup per spec §7.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Config is gatehook's full runtime configuration, loaded once at startup.
type Config struct {
	DiscordToken string
	HTTPEndpoint string
	Verbose      bool

	Webhook webhook.Config

	Ready   *filterpolicy.Policy
	Resumed *filterpolicy.Policy

	MessageDirect *filterpolicy.Policy
	MessageGuild  *filterpolicy.Policy

	MessageUpdateDirect *filterpolicy.Policy
	MessageUpdateGuild  *filterpolicy.Policy

	MessageDeleteDirect *filterpolicy.Policy
	MessageDeleteGuild  *filterpolicy.Policy

	MessageDeleteBulkGuild *filterpolicy.Policy

	ReactionAddDirect *filterpolicy.Policy
	ReactionAddGuild  *filterpolicy.Policy

	ReactionRemoveDirect *filterpolicy.Policy
	ReactionRemoveGuild  *filterpolicy.Policy
}

// Load reads Config from the process environment. All errors returned are
// *ConfigError and fatal at startup.
func Load() (*Config, error) {
	cfg := &Config{}

	token, ok := os.LookupEnv("DISCORD_TOKEN")
	if !ok || token == "" {
		return nil, configErrorf("DISCORD_TOKEN is required")
	}
	cfg.DiscordToken = token

	endpoint, ok := os.LookupEnv("HTTP_ENDPOINT")
	if !ok || endpoint == "" {
		return nil, configErrorf("HTTP_ENDPOINT is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, configErrorf("HTTP_ENDPOINT is not a valid URL: %q", endpoint)
	}
	cfg.HTTPEndpoint = endpoint

	cfg.Verbose = envBool("GATEHOOK_VERBOSE", false)

	insecure := envBool("INSECURE_MODE", false)

	timeout, err := envDurationSeconds("HTTP_TIMEOUT", webhook.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	connectTimeout, err := envDurationSeconds("HTTP_CONNECT_TIMEOUT", webhook.DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	maxBody, err := envInt64("MAX_RESPONSE_BODY_SIZE", webhook.DefaultMaxResponseBodySize)
	if err != nil {
		return nil, err
	}
	maxActions, err := envInt("MAX_ACTIONS", webhook.DefaultMaxActions)
	if err != nil {
		return nil, err
	}

	cfg.Webhook = webhook.Config{
		Endpoint:            endpoint,
		InsecureMode:        insecure,
		Timeout:             timeout,
		ConnectTimeout:      connectTimeout,
		MaxResponseBodySize: maxBody,
		MaxActions:          maxActions,
	}

	policies := []struct {
		name string
		dst  **filterpolicy.Policy
	}{
		{"READY", &cfg.Ready},
		{"RESUMED", &cfg.Resumed},
		{"MESSAGE_DIRECT", &cfg.MessageDirect},
		{"MESSAGE_GUILD", &cfg.MessageGuild},
		{"MESSAGE_UPDATE_DIRECT", &cfg.MessageUpdateDirect},
		{"MESSAGE_UPDATE_GUILD", &cfg.MessageUpdateGuild},
		{"MESSAGE_DELETE_DIRECT", &cfg.MessageDeleteDirect},
		{"MESSAGE_DELETE_GUILD", &cfg.MessageDeleteGuild},
		{"MESSAGE_DELETE_BULK_GUILD", &cfg.MessageDeleteBulkGuild},
		{"REACTION_ADD_DIRECT", &cfg.ReactionAddDirect},
		{"REACTION_ADD_GUILD", &cfg.ReactionAddGuild},
		{"REACTION_REMOVE_DIRECT", &cfg.ReactionRemoveDirect},
		{"REACTION_REMOVE_GUILD", &cfg.ReactionRemoveGuild},
	}

	for _, p := range policies {
		raw, set := os.LookupEnv(p.name)
		policy, err := filterpolicy.Parse(raw, set)
		if err != nil {
			return nil, configErrorf("%s: %v", p.name, err)
		}
		*p.dst = policy
	}

	return cfg, nil
}

func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	return v == "true" || v == "1"
}

func envInt(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, configErrorf("%s: invalid integer %q", name, v)
	}
	return n, nil
}

func envInt64(name string, def int64) (int64, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, configErrorf("%s: invalid integer %q", name, v)
	}
	return n, nil
}

func envDurationSeconds(name string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, configErrorf("%s: invalid integer seconds %q", name, v)
	}
	return time.Duration(secs) * time.Second, nil
}
