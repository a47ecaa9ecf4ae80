package ctx

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aggrecore/core/pkg/stremio"
)

// LibraryItemDeepLinks mirrors the shape the original core's view model
// exposes per library item: ready-made URLs a UI can embed as-is rather
// than reconstructing client-side.
type LibraryItemDeepLinks struct {
	MetaDetailsVideos  string `json:"metaDetailsVideos,omitempty"`
	MetaDetailsStreams string `json:"metaDetailsStreams,omitempty"`
}

// NewLibraryItemDeepLinks builds the deep links for a LibraryItem, per
// original_source/src/model/deep_links.rs.
func NewLibraryItemDeepLinks(item stremio.LibraryItem) LibraryItemDeepLinks {
	var d LibraryItemDeepLinks
	if item.BehaviorHints.DefaultVideoID == "" {
		d.MetaDetailsVideos = fmt.Sprintf("#/metadetails/%s/%s", pathEscape(item.Type), pathEscape(item.ID))
	}
	videoID := item.State.VideoID
	if videoID == "" {
		videoID = item.BehaviorHints.DefaultVideoID
	}
	if videoID != "" {
		d.MetaDetailsStreams = fmt.Sprintf("#/metadetails/%s/%s/%s", pathEscape(item.Type), pathEscape(item.ID), pathEscape(videoID))
	}
	return d
}

// MetaItemDeepLinks mirrors MetaItemDeepLinks in the original core,
// shared by both the preview and full meta shapes.
type MetaItemDeepLinks struct {
	MetaDetailsVideos  string `json:"metaDetailsVideos,omitempty"`
	MetaDetailsStreams string `json:"metaDetailsStreams,omitempty"`
}

// NewMetaItemPreviewDeepLinks builds the deep links for a catalog preview.
func NewMetaItemPreviewDeepLinks(item stremio.MetaItemPreview) MetaItemDeepLinks {
	return metaItemDeepLinks(item.Type, item.ID, item.BehaviorHints.DefaultVideoID)
}

// NewMetaItemDeepLinks builds the deep links for a full meta item.
func NewMetaItemDeepLinks(item stremio.MetaItem) MetaItemDeepLinks {
	return metaItemDeepLinks(item.Type, item.ID, item.BehaviorHints.DefaultVideoID)
}

// metaItemDeepLinks builds both links from a default_video_id: videos
// only resolves when there is none (an episodic meta with no default),
// streams resolves to that default video when there is one.
func metaItemDeepLinks(typeName, id, defaultVideoID string) MetaItemDeepLinks {
	var d MetaItemDeepLinks
	if defaultVideoID == "" {
		d.MetaDetailsVideos = fmt.Sprintf("#/metadetails/%s/%s", pathEscape(typeName), pathEscape(id))
	} else {
		d.MetaDetailsStreams = fmt.Sprintf("#/metadetails/%s/%s/%s", pathEscape(typeName), pathEscape(id), pathEscape(defaultVideoID))
	}
	return d
}

// VideoDeepLinks mirrors VideoDeepLinks: meta_details_streams always
// resolves, player only when the video carries exactly one stream (an
// unambiguous default play action).
type VideoDeepLinks struct {
	MetaDetailsStreams string `json:"metaDetailsStreams"`
	Player             string `json:"player,omitempty"`
}

// NewVideoDeepLinks builds the deep links for a Video within the given
// meta ResourceRequest.
func NewVideoDeepLinks(video stremio.Video, req stremio.ResourceRequest) (VideoDeepLinks, error) {
	d := VideoDeepLinks{
		MetaDetailsStreams: fmt.Sprintf("#/metadetails/%s/%s/%s", pathEscape(req.Path.Type), pathEscape(req.Path.ID), pathEscape(video.ID)),
	}
	if len(video.Streams) != 1 {
		return d, nil
	}
	encoded, err := gzEncode(video.Streams[0])
	if err != nil {
		return VideoDeepLinks{}, err
	}
	d.Player = fmt.Sprintf("#/player/%s/%s/%s/%s/%s/%s",
		pathEscape(encoded), pathEscape(req.Base), pathEscape(req.Base),
		pathEscape(req.Path.Type), pathEscape(req.Path.ID), pathEscape(video.ID))
	return d, nil
}

// StreamDeepLinks mirrors StreamDeepLinks: player alone for a
// standalone stream, or the fully qualified six-segment form when the
// originating stream and meta requests are both known.
type StreamDeepLinks struct {
	Player string `json:"player"`
}

// NewStreamDeepLinks builds a bare player deep link.
func NewStreamDeepLinks(stream stremio.Stream) (StreamDeepLinks, error) {
	encoded, err := gzEncode(stream)
	if err != nil {
		return StreamDeepLinks{}, err
	}
	return StreamDeepLinks{Player: fmt.Sprintf("#/player/%s", pathEscape(encoded))}, nil
}

// NewStreamDeepLinksWithRequests builds the fully-qualified player deep
// link carrying both the stream's and the meta's ResourceRequest.
func NewStreamDeepLinksWithRequests(stream stremio.Stream, streamReq, metaReq stremio.ResourceRequest) (StreamDeepLinks, error) {
	encoded, err := gzEncode(stream)
	if err != nil {
		return StreamDeepLinks{}, err
	}
	player := fmt.Sprintf("#/player/%s/%s/%s/%s/%s/%s",
		pathEscape(encoded), pathEscape(streamReq.Base), pathEscape(metaReq.Base),
		pathEscape(metaReq.Path.Type), pathEscape(metaReq.Path.ID), pathEscape(streamReq.Path.ID))
	return StreamDeepLinks{Player: player}, nil
}

// MetaCatalogResourceDeepLinks mirrors MetaCatalogResourceDeepLinks.
type MetaCatalogResourceDeepLinks struct {
	Discover string `json:"discover"`
}

// NewMetaCatalogResourceDeepLinks builds the discover deep link for a
// planned catalog ResourceRequest.
func NewMetaCatalogResourceDeepLinks(req stremio.ResourceRequest) MetaCatalogResourceDeepLinks {
	return MetaCatalogResourceDeepLinks{
		Discover: fmt.Sprintf("#/discover/%s/%s/%s?%s",
			pathEscape(req.Base), pathEscape(req.Path.Type), pathEscape(req.Path.ID), req.Path.EncodeExtra()),
	}
}

func pathEscape(s string) string {
	return url.QueryEscape(s)
}

// gzEncode zlib-compresses a JSON-encoded value and base64url-encodes
// the result, matching the original core's stream-in-URL encoding.
func gzEncode(v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("ctx: encoding deep link payload: %w", err)
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("ctx: compressing deep link payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ctx: closing deep link compressor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
