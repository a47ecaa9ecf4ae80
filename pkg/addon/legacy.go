package addon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

// Legacy talks the JSON-RPC 2.0-over-base64-query addon protocol used by
// addons whose transport URL contains "/stremio/v1".
type Legacy struct {
	env  env.Env
	base string

	// nextID is incremented per call; the legacy wire format carries an
	// integer request id but nothing in this core depends on matching
	// it, so a monotonically increasing counter is sufficient.
	nextID int
}

type legacyEnvelope struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type legacyResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *legacyRPCError `json:"error"`
}

type legacyRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// legacySort builds {<id>: -1, "popularity": -1}, matching the upstream
// stremboard convention this transport follows. When the catalog id is
// itself "popularity" the two keys collide; that's reproduced verbatim
// (as literal duplicate JSON text, not deduplicated) rather than fixed,
// since json.Marshal on a map or struct can't represent it, this is
// built as raw bytes instead.
func legacySort(id string) json.RawMessage {
	idKey, _ := json.Marshal(id)
	return json.RawMessage(fmt.Sprintf(`{%s:-1,"popularity":-1}`, idKey))
}

func (l *Legacy) Manifest(ctx context.Context) (stremio.Manifest, error) {
	status, body, err := l.env.Fetch(ctx, env.Request{Method: "GET", URL: l.base + "/manifest.json"})
	if err != nil {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Err: err}
	}
	if status < 200 || status >= 300 {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Message: fmt.Sprintf("addon: legacy manifest fetch returned status %d", status)}
	}
	var legacyResp struct {
		Manifest legacyManifest `json:"manifest"`
		Methods  []string       `json:"methods"`
	}
	if err := json.Unmarshal(body, &legacyResp); err != nil {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Message: "addon: decoding legacy manifest", Err: err}
	}
	return synthesizeManifest(legacyResp.Manifest, legacyResp.Methods), nil
}

func (l *Legacy) Resource(ctx context.Context, path stremio.ResourcePath) (stremio.ResourceResponse, error) {
	method, params, err := legacyMethodAndParams(path)
	if err != nil {
		return stremio.ResourceResponse{}, err
	}

	l.nextID++
	env_ := legacyEnvelope{JSONRPC: "2.0", ID: l.nextID, Method: method, Params: []interface{}{nil, params}}
	raw, err := json.Marshal(env_)
	if err != nil {
		return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: encoding legacy envelope", Err: err}
	}
	// Standard (not URL-safe) alphabet, matching a documented upstream
	// quirk; do not switch to RawURLEncoding/URLEncoding.
	encoded := base64.StdEncoding.EncodeToString(raw)

	status, body, err := l.env.Fetch(ctx, env.Request{Method: "GET", URL: l.base + "/q.json?b=" + encoded})
	if err != nil {
		return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Err: err}
	}
	if status < 200 || status >= 300 {
		return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: fmt.Sprintf("addon: legacy resource fetch returned status %d", status)}
	}

	if errVal := gjson.GetBytes(body, "error"); errVal.Exists() {
		var rpcErr legacyRPCError
		if err := json.Unmarshal([]byte(errVal.Raw), &rpcErr); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrJSONRPC, Message: "addon: legacy error with unparseable body"}
		}
		return stremio.ResourceResponse{}, &Error{Kind: ErrJSONRPC, Code: rpcErr.Code, Message: rpcErr.Message}
	}

	result := gjson.GetBytes(body, "result").Raw
	return decodeLegacyResult(path.Resource, []byte(result))
}

// legacyMethodAndParams maps a modern resource request onto its legacy
// JSON-RPC method and params. Resources with no legacy equivalent
// (addon_catalog) return ErrUnsupportedRequest without a network call.
func legacyMethodAndParams(path stremio.ResourcePath) (string, map[string]interface{}, error) {
	switch path.Resource {
	case "catalog":
		query := map[string]interface{}{"type": path.Type}
		extra := path.ExtraMap()
		if genre, ok := extra["genre"]; ok {
			query["genre"] = genre
		}
		params := map[string]interface{}{
			"query": query,
			"limit": 100,
		}
		if path.ID != "top" {
			params["sort"] = legacySort(path.ID)
		} else {
			params["sort"] = nil
		}
		skip := 0
		if raw, ok := extra["skip"]; ok {
			if parsed, err := strconv.Atoi(raw); err == nil {
				skip = parsed
			}
		}
		params["skip"] = skip
		return "meta.find", params, nil
	case "meta":
		return "meta.get", map[string]interface{}{"query": idToQuery(path.ID)}, nil
	case "stream":
		query := idToQuery(path.ID)
		query["type"] = path.Type
		return "stream.find", map[string]interface{}{"query": query}, nil
	case "subtitles":
		return "subtitles.find", map[string]interface{}{"query": map[string]interface{}{"itemHash": path.ID}}, nil
	default:
		return "", nil, &Error{Kind: ErrUnsupportedRequest, Message: "addon: legacy transport has no equivalent for resource " + path.Resource}
	}
}

// idToQuery turns a legacy id into its query object: a "tt"-prefixed id
// splits on ':' into {imdb_id[, season, episode]}; a "UC"-prefixed id
// splits into {yt_id[, video_id]}; otherwise the first colon-separated
// token is treated as the property name.
func idToQuery(id string) map[string]interface{} {
	parts := strings.Split(id, ":")
	switch {
	case strings.HasPrefix(id, "tt"):
		q := map[string]interface{}{"imdb_id": parts[0]}
		if len(parts) > 1 {
			if season, err := strconv.Atoi(parts[1]); err == nil {
				q["season"] = season
			}
		}
		if len(parts) > 2 {
			if episode, err := strconv.Atoi(parts[2]); err == nil {
				q["episode"] = episode
			}
		}
		return q
	case strings.HasPrefix(id, "UC"):
		q := map[string]interface{}{"yt_id": parts[0]}
		if len(parts) > 1 {
			q["video_id"] = parts[1]
		}
		return q
	default:
		q := map[string]interface{}{parts[0]: id}
		return q
	}
}

func decodeLegacyResult(resource string, result []byte) (stremio.ResourceResponse, error) {
	switch resource {
	case "catalog":
		var metas []stremio.MetaItemPreview
		if err := json.Unmarshal(result, &metas); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding legacy catalog result", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindMetas, Metas: metas}, nil
	case "meta":
		var meta stremio.MetaItem
		if err := json.Unmarshal(result, &meta); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding legacy meta result", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindMeta, Meta: &meta}, nil
	case "stream":
		var streams []stremio.Stream
		if err := json.Unmarshal(result, &streams); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding legacy stream result", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindStreams, Streams: streams}, nil
	case "subtitles":
		var subs []stremio.Subtitle
		if err := json.Unmarshal(result, &subs); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding legacy subtitles result", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindSubtitles, Subtitles: subs}, nil
	default:
		return stremio.ResourceResponse{}, &Error{Kind: ErrUnsupportedResource}
	}
}

var _ Interface = (*Legacy)(nil)
