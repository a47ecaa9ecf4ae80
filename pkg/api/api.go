// Package api implements the remote Account API client: every call is a
// POST to https://api.strem.io/api/{method} with a JSON body carrying
// {type: "<Camel method>", authKey?, ...}, decoded through the shared
// APIResult envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

const DefaultBaseURL = "https://api.strem.io/api"

// Client issues Account API calls through an Env, so every request
// still passes through the host's rate limiting, proxying, and cookie
// jar policy exactly like addon traffic, grounded on realdebrid.Client's
// single-purpose typed-response HTTP client shape but routed through
// env.Env.Fetch rather than a private *http.Client.
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

// ErrorKind discriminates an APIError.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrAPI
)

// Error wraps the {code, message} object the Account API returns on
// failure.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (code %d)", e.Message, e.Code)
}

// call POSTs method with body (call sets its "type" field to the
// camel-cased method) and decodes the APIResult envelope into out.
func (c *Client) call(ctx context.Context, method string, body map[string]interface{}, out interface{}) error {
	if body == nil {
		body = map[string]interface{}{}
	}
	body["type"] = camelCase(method)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encoding %s request: %w", method, err)
	}

	status, respBody, err := c.env.Fetch(ctx, env.Request{
		Method:  "POST",
		URL:     c.baseURL + "/" + method,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("api: calling %s: %w", method, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("api: %s returned status %d", method, status)
	}
	return DecodeResult(respBody, out)
}

// DecodeResult decodes the {result: T} / {error: {code, message}}
// envelope shared by every Account API response, per SPEC_FULL.md's
// supplemented APIResult helper (original_source/src/types/api/response.rs).
func DecodeResult(body []byte, out interface{}) error {
	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *Error          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("api: decoding envelope: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("api: decoding result: %w", err)
	}
	return nil
}

func camelCase(method string) string {
	if method == "" {
		return method
	}
	return strings.ToUpper(method[:1]) + method[1:]
}

// AuthResult is the {key, user} shape returned by login/register.
type AuthResult struct {
	Key  string           `json:"key"`
	User stremio.AuthUser `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, "login", map[string]interface{}{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.call(ctx, "register", map[string]interface{}{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, authKey string) error {
	return c.call(ctx, "logout", map[string]interface{}{"authKey": authKey}, nil)
}

type addonCollectionGetResult struct {
	Addons       []stremio.Descriptor `json:"addons"`
	LastModified string               `json:"lastModified"`
}

func (c *Client) AddonCollectionGet(ctx context.Context, authKey string, update bool) ([]stremio.Descriptor, error) {
	var out addonCollectionGetResult
	err := c.call(ctx, "addonCollectionGet", map[string]interface{}{"authKey": authKey, "update": update}, &out)
	return out.Addons, err
}

func (c *Client) AddonCollectionSet(ctx context.Context, authKey string, addons []stremio.Descriptor) error {
	return c.call(ctx, "addonCollectionSet", map[string]interface{}{"authKey": authKey, "addons": addons}, nil)
}

func (c *Client) DatastoreGet(ctx context.Context, authKey, collection string, ids []string, all bool) ([]stremio.LibraryItem, error) {
	var out []stremio.LibraryItem
	err := c.call(ctx, "datastoreGet", map[string]interface{}{
		"authKey": authKey, "collection": collection, "ids": ids, "all": all,
	}, &out)
	return out, err
}

// MTimeEntry is one [id, mtime] pair as datastoreMeta returns them.
type MTimeEntry struct {
	ID    string
	MTime time.Time
}

func (c *Client) DatastoreMeta(ctx context.Context, authKey, collection string) ([]MTimeEntry, error) {
	var raw [][2]interface{}
	err := c.call(ctx, "datastoreMeta", map[string]interface{}{"authKey": authKey, "collection": collection}, &raw)
	if err != nil {
		return nil, err
	}
	out := make([]MTimeEntry, 0, len(raw))
	for _, pair := range raw {
		id, _ := pair[0].(string)
		mtimeStr, _ := pair[1].(string)
		mtime, err := time.Parse(time.RFC3339, mtimeStr)
		if err != nil {
			continue
		}
		out = append(out, MTimeEntry{ID: id, MTime: mtime})
	}
	return out, nil
}

func (c *Client) DatastorePut(ctx context.Context, authKey, collection string, changes []stremio.LibraryItem) error {
	return c.call(ctx, "datastorePut", map[string]interface{}{
		"authKey": authKey, "collection": collection, "changes": changes,
	}, nil)
}

func (c *Client) Events(ctx context.Context, authKey string, events []map[string]interface{}) error {
	return c.call(ctx, "events", map[string]interface{}{"authKey": authKey, "events": events}, nil)
}

type dataExportResult struct {
	ExportID string `json:"exportId"`
}

// DataExport returns the export's download URL, built from the returned
// exportId.
func (c *Client) DataExport(ctx context.Context, authKey string) (string, error) {
	var out dataExportResult
	if err := c.call(ctx, "dataExport", map[string]interface{}{"authKey": authKey}, &out); err != nil {
		return "", err
	}
	return c.baseURL + "/data-export/" + out.ExportID + "/export.json", nil
}
