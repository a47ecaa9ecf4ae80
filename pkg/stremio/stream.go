package stremio

import "fmt"

// StreamKind discriminates the Stream tagged union.
type StreamKind int

const (
	StreamKindURL StreamKind = iota
	StreamKindYouTube
	StreamKindTorrent
	StreamKindExternal
	StreamKindPlayerFrame
)

// Stream is a tagged union over the five ways an addon can describe a
// playable source. Exactly one of the kind-specific fields is meaningful,
// selected by Kind.
type Stream struct {
	Kind StreamKind

	URL         string `json:"url,omitempty"`
	YoutubeID   string `json:"ytId,omitempty"`
	InfoHash    string `json:"infoHash,omitempty"`
	FileIdx     *uint16 `json:"fileIdx,omitempty"`
	Announce    []string `json:"announce,omitempty"`
	ExternalURL string `json:"externalUrl,omitempty"`
	PlayerFrameURL string `json:"playerFrameUrl,omitempty"`

	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Thumbnail   string             `json:"thumbnail,omitempty"`
	Subtitles   []Subtitle         `json:"subtitles,omitempty"`
	BehaviorHints StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

type StreamBehaviorHints struct {
	BingeGroup  string `json:"bingeGroup,omitempty"`
	NotWebReady bool   `json:"notWebReady,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

type Subtitle struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

// NewURLStream, NewYouTubeStream, NewTorrentStream, NewExternalStream, and
// NewPlayerFrameStream are the one-constructor-per-variant entry points
// for building a Stream, mirroring a Rust enum's variant constructors.
func NewURLStream(url string) Stream { return Stream{Kind: StreamKindURL, URL: url} }

func NewYouTubeStream(ytID string) Stream { return Stream{Kind: StreamKindYouTube, YoutubeID: ytID} }

func NewTorrentStream(infoHash string, fileIdx *uint16, announce []string) Stream {
	return Stream{Kind: StreamKindTorrent, InfoHash: infoHash, FileIdx: fileIdx, Announce: announce}
}

func NewExternalStream(url string) Stream { return Stream{Kind: StreamKindExternal, ExternalURL: url} }

func NewPlayerFrameStream(url string) Stream {
	return Stream{Kind: StreamKindPlayerFrame, PlayerFrameURL: url}
}

// Fingerprint returns the stable identity of the stream used to match the
// "same stream" across requests: the URL for Url/External streams, the
// YouTube id, or the torrent info hash.
func (s Stream) Fingerprint() string {
	switch s.Kind {
	case StreamKindURL:
		return "url:" + s.URL
	case StreamKindExternal:
		return "url:" + s.ExternalURL
	case StreamKindYouTube:
		return "yt:" + s.YoutubeID
	case StreamKindTorrent:
		return "ih:" + s.InfoHash
	case StreamKindPlayerFrame:
		return "pf:" + s.PlayerFrameURL
	default:
		return ""
	}
}

// MarshalJSON flattens the tagged union into the single JSON object shape
// addons emit, where exactly one of url/ytId/infoHash/externalUrl/
// playerFrameUrl is present.
func (s Stream) MarshalJSON() ([]byte, error) {
	type alias Stream
	a := alias(s)
	switch s.Kind {
	case StreamKindURL:
		a.YoutubeID, a.InfoHash, a.ExternalURL, a.PlayerFrameURL = "", "", "", ""
	case StreamKindYouTube:
		a.URL, a.InfoHash, a.ExternalURL, a.PlayerFrameURL = "", "", "", ""
	case StreamKindTorrent:
		a.URL, a.YoutubeID, a.ExternalURL, a.PlayerFrameURL = "", "", "", ""
	case StreamKindExternal:
		a.URL, a.YoutubeID, a.InfoHash, a.PlayerFrameURL = "", "", "", ""
	case StreamKindPlayerFrame:
		a.URL, a.YoutubeID, a.InfoHash, a.ExternalURL = "", "", "", ""
	}
	return jsonMarshal(a)
}

// UnmarshalJSON infers Kind from which identity field is populated,
// preferring the first match in the order the spec lists the variants.
func (s *Stream) UnmarshalJSON(data []byte) error {
	type alias Stream
	var a alias
	if err := jsonUnmarshal(data, &a); err != nil {
		return err
	}
	*s = Stream(a)
	switch {
	case s.URL != "":
		s.Kind = StreamKindURL
	case s.YoutubeID != "":
		s.Kind = StreamKindYouTube
	case s.InfoHash != "":
		s.Kind = StreamKindTorrent
	case s.ExternalURL != "":
		s.Kind = StreamKindExternal
	case s.PlayerFrameURL != "":
		s.Kind = StreamKindPlayerFrame
	default:
		return fmt.Errorf("stream has none of url/ytId/infoHash/externalUrl/playerFrameUrl set")
	}
	return nil
}
