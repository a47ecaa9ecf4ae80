// Package streamingserver implements the client for the local streaming
// server: a health-checkable HTTP service, normally at
// http://127.0.0.1:11470, that the player hands off torrent/magnet
// playback and HTTPS tunneling to.
package streamingserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aggrecore/core/pkg/env"
)

const DefaultBaseURL = "http://127.0.0.1:11470"

// Client issues streaming-server calls through an Env, the same
// typed-response HTTP client shape as pkg/api.Client and pkg/link.Client,
// generalized from realdebrid.Client.
type Client struct {
	env     env.Env
	baseURL string
}

func NewClient(e env.Env, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{env: e, baseURL: baseURL}
}

type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrEnv
	ErrHTTPStatus
	ErrDecode
)

type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("streamingserver: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("streamingserver: %v", e.Err)
	}
	return "streamingserver: unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	status, body, err := c.env.Fetch(ctx, env.Request{Method: "GET", URL: c.baseURL + path})
	if err != nil {
		return &Error{Kind: ErrEnv, Err: err}
	}
	if status < 200 || status >= 300 {
		return &Error{Kind: ErrHTTPStatus, Status: status, Message: fmt.Sprintf("%s returned status %d", path, status)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: ErrDecode, Err: err}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: ErrDecode, Err: err}
		}
	}
	status, respBody, err := c.env.Fetch(ctx, env.Request{
		Method:  "POST",
		URL:     c.baseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(payload),
	})
	if err != nil {
		return &Error{Kind: ErrEnv, Err: err}
	}
	if status < 200 || status >= 300 {
		return &Error{Kind: ErrHTTPStatus, Status: status, Message: fmt.Sprintf("%s returned status %d", path, status)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: ErrDecode, Err: err}
	}
	return nil
}

// Settings is the streaming server's own configuration object, round-
// tripped verbatim between GET and POST /settings.
type Settings struct {
	ServerVersion            string `json:"serverVersion,omitempty"`
	AppPath                  string `json:"appPath,omitempty"`
	CacheRoot                string `json:"cacheRoot,omitempty"`
	CacheSize                *int64 `json:"cacheSize,omitempty"`
	BtMaxConnections         int    `json:"btMaxConnections,omitempty"`
	BtHandshakeTimeout       int    `json:"btHandshakeTimeout,omitempty"`
	BtRequestTimeout         int    `json:"btRequestTimeout,omitempty"`
	BtDownloadSpeedSoftLimit int64  `json:"btDownloadSpeedSoftLimit,omitempty"`
	BtDownloadSpeedHardLimit int64  `json:"btDownloadSpeedHardLimit,omitempty"`
	BtMinPeersForStable      int    `json:"btMinPeersForStable,omitempty"`
}

// GetSettings fetches the server's current settings. Only the settings
// object is decoded; no base URL is read from the response.
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	err := c.get(ctx, "/settings", &out)
	return out, err
}

// SetSettings pushes updated settings to the server.
func (c *Client) SetSettings(ctx context.Context, s Settings) error {
	return c.post(ctx, "/settings", s, nil)
}

// CastingDevice is one entry of the /casting device discovery response.
type CastingDevice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (c *Client) Casting(ctx context.Context) ([]CastingDevice, error) {
	var out []CastingDevice
	err := c.get(ctx, "/casting", &out)
	return out, err
}

// NetworkInfo reports the reachable network interfaces the server is
// bound to, used to pick an address reachable from other devices.
type NetworkInfo struct {
	Interfaces []NetworkInterface `json:"interfaces"`
}

type NetworkInterface struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (c *Client) NetworkInfo(ctx context.Context) (NetworkInfo, error) {
	var out NetworkInfo
	err := c.get(ctx, "/network-info", &out)
	return out, err
}

// DeviceInfo reports host platform/hardware facts the player surfaces to
// the user (e.g. hardware decoding availability).
type DeviceInfo struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Hardware string `json:"hardware,omitempty"`
}

func (c *Client) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	var out DeviceInfo
	err := c.get(ctx, "/device-info", &out)
	return out, err
}

// HTTPSTunnel is the negotiated public HTTPS endpoint for a server that
// otherwise only answers on a local/plaintext address.
type HTTPSTunnel struct {
	TunnelURL string `json:"tunnelUrl"`
}

func (c *Client) GetHTTPS(ctx context.Context) (HTTPSTunnel, error) {
	var out HTTPSTunnel
	err := c.get(ctx, "/get-https", &out)
	return out, err
}

// CreateTorrentResult is the descriptor the server returns once it has
// registered a torrent/blob for playback.
type CreateTorrentResult struct {
	InfoHash string `json:"infoHash"`
}

// CreateFromMagnet registers a magnet link for playback: POST
// /{info_hash}/create (or /create for a blob).
func (c *Client) CreateFromMagnet(ctx context.Context, infoHash, magnet string) (CreateTorrentResult, error) {
	var out CreateTorrentResult
	err := c.post(ctx, "/"+infoHash+"/create", map[string]string{"magnet": magnet}, &out)
	return out, err
}

// CreateFromBlob registers a raw torrent file (base64-encoded) for
// playback when no info_hash is known ahead of time.
func (c *Client) CreateFromBlob(ctx context.Context, blobBase64 string) (CreateTorrentResult, error) {
	var out CreateTorrentResult
	err := c.post(ctx, "/create", map[string]string{"blob": blobBase64}, &out)
	return out, err
}

// Stats is the per-stream download/playback statistics the server
// exposes while a torrent is active.
type Stats struct {
	Speed      int64   `json:"speed"`
	Downloaded int64   `json:"downloaded"`
	Peers      int     `json:"peers"`
	Progress   float64 `json:"progress"`
}

func (c *Client) Stats(ctx context.Context, infoHash string, fileIdx int) (Stats, error) {
	var out Stats
	err := c.get(ctx, fmt.Sprintf("/%s/%d/stats.json", infoHash, fileIdx), &out)
	return out, err
}
