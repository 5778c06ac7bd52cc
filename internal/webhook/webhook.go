// Package webhook implements the outbound webhook delivery and response
// parsing of spec §4.5: POST the event payload with an event-kind query
// parameter, then parse the (possibly absent) JSON action list out of
// whatever the webhook returned.
package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nextlevelbuilder/gatehook/internal/payload"
)

// ErrTransport wraps network/timeout failures performing the POST itself
// (spec §7's WebhookTransportError). The bridge logs it at warn and drops
// the event — no retry is attempted.
var ErrTransport = errors.New("webhook: delivery failed")

// Config configures the webhook sender, sourced from spec §6's environment
// variables.
type Config struct {
	Endpoint             string
	InsecureMode         bool
	Timeout              time.Duration
	ConnectTimeout       time.Duration
	MaxResponseBodySize  int64
	MaxActions           int
}

// Defaults per spec §6.
const (
	DefaultTimeout             = 300 * time.Second
	DefaultConnectTimeout      = 10 * time.Second
	DefaultMaxResponseBodySize = 131072
	DefaultMaxActions          = 5
)

// Sender POSTs event payloads to the configured endpoint and parses the
// response's action list.
type Sender struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// New builds a Sender. cfg.Endpoint must already be validated as a URL by
// the config loader (spec §7's ConfigError is a startup-time concern, not
// this package's).
func New(cfg Config, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext: dialer.DialContext,
	}
	if cfg.InsecureMode {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in via INSECURE_MODE
	}
	return &Sender{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log: log,
	}
}

// Send delivers body to the webhook endpoint with handler=kind as a query
// parameter, then parses the response into a Response. Send returns a
// non-nil error for a transport-level delivery failure, including a failed
// read of the response body (ErrTransport), or for an endpoint or request
// that cannot be built; an oversized body or an unparsable body are both recovered locally per
// spec §7 — they are logged and Send returns an empty Response with a nil
// error, so the bridge's action execution step sees "no actions" rather
// than having to special-case every non-transport failure mode.
func (s *Sender) Send(ctx context.Context, kind payload.Kind, body []byte) (*Response, error) {
	endpoint, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("webhook: invalid endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("handler", string(kind))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("webhook: delivery failed", "handler", kind, "error", err)
		return nil, errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := readCapped(resp.Body, s.cfg.MaxResponseBodySize)
	if err != nil {
		if !errors.Is(err, errBodyTooLarge) {
			s.log.Warn("webhook: reading response body failed", "handler", kind, "error", err)
			return nil, errors.Join(ErrTransport, err)
		}
		s.log.Warn("webhook: response body exceeded max size, treating as no actions",
			"handler", kind, "status", resp.StatusCode, "max_bytes", s.cfg.MaxResponseBodySize)
		return &Response{}, nil
	}

	response, err := parseResponse(respBody)
	if err != nil {
		s.log.Warn("webhook: response body not valid JSON, treating as no actions",
			"handler", kind, "status", resp.StatusCode, "error", err)
		return &Response{}, nil
	}

	if max := s.cfg.MaxActions; max > 0 && len(response.Actions) > max {
		s.log.Warn("webhook: response exceeded max actions, dropping tail",
			"handler", kind, "returned", len(response.Actions), "max", max)
		response.Actions = response.Actions[:max]
	}

	return response, nil
}

// errBodyTooLarge is returned internally by readCapped when the body
// exceeds the configured limit.
var errBodyTooLarge = errors.New("webhook: response body too large")

// readCapped reads at most limit bytes from r, returning errBodyTooLarge if
// the body is larger. It reads limit+1 bytes so an exactly-limit-sized body
// is accepted while anything larger is rejected.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("webhook: read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// parseResponse parses the webhook's JSON body into a Response. A missing
// body, "{}", or "[]" actions all mean "no actions" per spec §3.
func parseResponse(body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Response{}, nil
	}
	var response Response
	if err := json.Unmarshal(trimmed, &response); err != nil {
		return nil, fmt.Errorf("webhook: parse response: %w", err)
	}
	return &response, nil
}
