package addon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

// Modern talks the REST-ish addon protocol:
// GET {base}/{resource}/{type}/{id}/{extra}.json, GET {base}/manifest.json.
type Modern struct {
	env  env.Env
	base string
}

func (m *Modern) Manifest(ctx context.Context) (stremio.Manifest, error) {
	status, body, err := m.env.Fetch(ctx, env.Request{Method: "GET", URL: m.base + "/manifest.json"})
	if err != nil {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Err: err}
	}
	if status < 200 || status >= 300 {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Message: fmt.Sprintf("addon: manifest fetch returned status %d", status)}
	}
	var manifest stremio.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return stremio.Manifest{}, &Error{Kind: ErrTransport, Message: "addon: decoding manifest", Err: err}
	}
	return manifest, nil
}

func (m *Modern) Resource(ctx context.Context, path stremio.ResourcePath) (stremio.ResourceResponse, error) {
	url := m.base + "/" + path.Resource + "/" + path.Type + "/" + path.ID
	if extra := path.EncodeExtra(); extra != "" {
		url += "/" + extra
	}
	url += ".json"

	status, body, err := m.env.Fetch(ctx, env.Request{Method: "GET", URL: url})
	if err != nil {
		return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Err: err}
	}
	if status < 200 || status >= 300 {
		return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: fmt.Sprintf("addon: resource fetch returned status %d", status)}
	}
	return decodeModernResponse(path.Resource, body)
}

// decodeModernResponse pre-parses the response shape with gjson before
// committing to a full decode into the matching ResourceResponse arm,
// mirroring cinemata.Client's gjson.GetBytes pre-parsing.
func decodeModernResponse(resource string, body []byte) (stremio.ResourceResponse, error) {
	switch resource {
	case "catalog":
		if gjson.GetBytes(body, "metasDetailed").Exists() {
			var metas []stremio.MetaItem
			if err := json.Unmarshal([]byte(gjson.GetBytes(body, "metasDetailed").Raw), &metas); err != nil {
				return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding metasDetailed", Err: err}
			}
			return stremio.ResourceResponse{Kind: stremio.ResponseKindMetasDetailed, MetasDetailed: metas}, nil
		}
		var payload struct {
			Metas []stremio.MetaItemPreview `json:"metas"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding metas", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindMetas, Metas: payload.Metas}, nil
	case "meta":
		var payload struct {
			Meta stremio.MetaItem `json:"meta"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding meta", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindMeta, Meta: &payload.Meta}, nil
	case "stream":
		var payload struct {
			Streams []stremio.Stream `json:"streams"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding streams", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindStreams, Streams: payload.Streams}, nil
	case "subtitles":
		var payload struct {
			Subtitles []stremio.Subtitle `json:"subtitles"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding subtitles", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindSubtitles, Subtitles: payload.Subtitles}, nil
	case "addon_catalog":
		var payload struct {
			Addons []stremio.Descriptor `json:"addons"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return stremio.ResourceResponse{}, &Error{Kind: ErrTransport, Message: "addon: decoding addon catalog", Err: err}
		}
		return stremio.ResourceResponse{Kind: stremio.ResponseKindAddons, Addons: payload.Addons}, nil
	default:
		return stremio.ResourceResponse{}, &Error{Kind: ErrUnsupportedResource, Message: "addon: unknown resource " + resource}
	}
}

var _ Interface = (*Modern)(nil)
