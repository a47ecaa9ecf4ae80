// Package link implements the device-pairing flow: a short-lived code
// is created against the link service, the client displays it (or its
// QR code), and once another device submits it the code resolves to an
// account auth key.
package link

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aggrecore/core/pkg/env"
)

// DefaultBaseURL is the link service's API root, grounded on
// realdebrid.DefaultBaseURL's constant-per-client pattern.
const DefaultBaseURL = "https://link.stremio.com/api/v2"

// ErrorKind discriminates a link failure.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrAPI
	ErrEnv
	ErrUnexpectedResponse
)

// Error is link's typed failure, mirroring original_source's
// LinkError{API, Env, UnexpectedResponse} enum.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("link: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("link: %v", e.Err)
	}
	return "link: unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// CodeResponse is the short-lived pairing code plus its shareable link
// and QR code image URL.
type CodeResponse struct {
	Code   string `json:"code"`
	Link   string `json:"link"`
	QRCode string `json:"qrcode"`
}

// apiEnvelope is the untagged {result} / {error} shape the link service
// shares with the Account API, per original_source's APIResult<T>.
type apiEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Client issues link-service calls through an Env, matching pkg/api's
// "route every call through env.Env.Fetch" rule. The link service is a
// second, unrelated REST API, not a variant of the Account API, so it
// gets its own small client rather than being bolted onto pkg/api.Client.
type Client struct {
	env     env.Env
	baseURL string
}

func NewClient(e env.Env) *Client {
	return &Client{env: e, baseURL: DefaultBaseURL}
}

func NewClientWithBaseURL(e env.Env, baseURL string) *Client {
	return &Client{env: e, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Create requests a fresh pairing code.
func (c *Client) Create(ctx context.Context) (CodeResponse, error) {
	var out CodeResponse
	err := c.get(ctx, "create", "type=Create", &out)
	return out, err
}

// Read resolves a pairing code to the auth key the paired device
// submitted, once it has. Callers poll Read until it stops erroring with
// "not yet submitted", represented here as any non-decode API error.
func (c *Client) Read(ctx context.Context, code string) (string, error) {
	var out struct {
		AuthKey string `json:"authKey"`
	}
	query := "type=Read&code=" + url.QueryEscape(code)
	err := c.get(ctx, "read", query, &out)
	return out.AuthKey, err
}

func (c *Client) get(ctx context.Context, path, query string, out interface{}) error {
	reqURL := c.baseURL + "/" + path + "?" + query
	status, body, err := c.env.Fetch(ctx, env.Request{Method: "GET", URL: reqURL})
	if err != nil {
		return &Error{Kind: ErrEnv, Err: err}
	}
	if status < 200 || status >= 300 {
		return &Error{Kind: ErrAPI, Message: fmt.Sprintf("%s returned status %d", path, status)}
	}
	return decode(body, out)
}

func decode(body []byte, out interface{}) error {
	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &Error{Kind: ErrUnexpectedResponse, Err: err}
	}
	if envelope.Error != nil {
		return &Error{Kind: ErrAPI, Message: envelope.Error.Message}
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &Error{Kind: ErrUnexpectedResponse, Err: err}
	}
	return nil
}
