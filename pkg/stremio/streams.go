package stremio

import (
	"strings"
	"time"
)

// StreamsItemState is the playback state carried alongside a remembered
// stream selection.
type StreamsItemState struct {
	TimeOffset int64 `json:"timeOffset"`
	Duration   int64 `json:"duration"`
}

// StreamsItem is the most-recently-played stream for one (meta, video)
// pair, plus the transport URLs it came from and its playback state.
type StreamsItem struct {
	Stream              Stream           `json:"stream"`
	MetaTransportURL    string           `json:"metaTransportUrl,omitempty"`
	StreamTransportURL  string           `json:"streamTransportUrl,omitempty"`
	Type                string           `json:"type"`
	State               StreamsItemState `json:"state"`
	MTime               time.Time        `json:"mtime"`
}

// StreamsItemKey identifies a StreamsBucket entry.
type StreamsItemKey struct {
	MetaID  string
	VideoID string
}

// StreamsBucket is the user's playback memory: the most recently played
// stream for each (meta, video) pair the user has started watching.
type StreamsBucket struct {
	UID   string                         `json:"uid,omitempty"`
	Items map[StreamsItemKey]StreamsItem `json:"items"`
}

func NewStreamsBucket(uid string) StreamsBucket {
	return StreamsBucket{UID: uid, Items: map[StreamsItemKey]StreamsItem{}}
}

// streamsItemKeyString joins the composite key with a separator that
// cannot occur in either half (meta/video ids are addon-issued opaque
// strings, never containing NUL).
func streamsItemKeyString(k StreamsItemKey) string {
	return k.MetaID + "\x00" + k.VideoID
}

func parseStreamsItemKey(s string) StreamsItemKey {
	parts := strings.SplitN(s, "\x00", 2)
	if len(parts) != 2 {
		return StreamsItemKey{MetaID: s}
	}
	return StreamsItemKey{MetaID: parts[0], VideoID: parts[1]}
}

// MarshalJSON flattens the composite-keyed Items map into a plain
// string-keyed JSON object, since encoding/json cannot key a map by a
// struct.
func (b StreamsBucket) MarshalJSON() ([]byte, error) {
	flat := make(map[string]StreamsItem, len(b.Items))
	for k, v := range b.Items {
		flat[streamsItemKeyString(k)] = v
	}
	return jsonMarshal(struct {
		UID   string                 `json:"uid,omitempty"`
		Items map[string]StreamsItem `json:"items"`
	}{UID: b.UID, Items: flat})
}

func (b *StreamsBucket) UnmarshalJSON(data []byte) error {
	var aux struct {
		UID   string                 `json:"uid,omitempty"`
		Items map[string]StreamsItem `json:"items"`
	}
	if err := jsonUnmarshal(data, &aux); err != nil {
		return err
	}
	b.UID = aux.UID
	b.Items = make(map[StreamsItemKey]StreamsItem, len(aux.Items))
	for k, v := range aux.Items {
		b.Items[parseStreamsItemKey(k)] = v
	}
	return nil
}

// NotificationItem is one newly-released, not-yet-watched video for a
// library item.
type NotificationItem struct {
	MetaID     string    `json:"metaId"`
	VideoID    string    `json:"videoId"`
	VideoReleased time.Time `json:"videoReleased"`
}

// NotificationsBucket holds, per meta id, the set of videos eligible for
// a new-episode notification.
type NotificationsBucket struct {
	UID       string                               `json:"uid,omitempty"`
	CreatedAt time.Time                            `json:"createdAt"`
	Items     map[string]map[string]NotificationItem `json:"items"`
}

func NewNotificationsBucket(uid string, createdAt time.Time) NotificationsBucket {
	return NotificationsBucket{UID: uid, CreatedAt: createdAt, Items: map[string]map[string]NotificationItem{}}
}
