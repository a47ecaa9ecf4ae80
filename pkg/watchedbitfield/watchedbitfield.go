// Package watchedbitfield implements the compact per-video watched-state
// bitmap carried in LibraryItemState.Watched, serialized as
// "meta_id:count:offset:base64(gzip(bits))".
package watchedbitfield

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Bitfield is a packed bitmap of watched flags for a meta's ordered
// video list. Offset lets the packed bits start mid-way through the
// video list (used when the encoded form only needs to cover the tail
// of a long list).
type Bitfield struct {
	MetaID string
	Count  int
	Offset int
	bits   []byte
}

// New returns an all-unwatched Bitfield for a meta with count videos.
func New(metaID string, count int) Bitfield {
	return Bitfield{MetaID: metaID, Count: count, bits: make([]byte, (count+7)/8)}
}

// Get reports whether the video at list index i is marked watched.
// Indices before Offset are always false (not covered by the packed
// bits).
func (b Bitfield) Get(i int) bool {
	if i < b.Offset || i >= b.Count {
		return false
	}
	pos := i - b.Offset
	byteIdx, bitIdx := pos/8, uint(pos%8)
	if byteIdx >= len(b.bits) {
		return false
	}
	return b.bits[byteIdx]&(1<<bitIdx) != 0
}

// Set marks the video at list index i watched/unwatched, growing the
// backing bytes if needed.
func (b *Bitfield) Set(i int, watched bool) {
	if i < b.Offset || i >= b.Count {
		return
	}
	pos := i - b.Offset
	byteIdx, bitIdx := pos/8, uint(pos%8)
	for byteIdx >= len(b.bits) {
		b.bits = append(b.bits, 0)
	}
	if watched {
		b.bits[byteIdx] |= 1 << bitIdx
	} else {
		b.bits[byteIdx] &^= 1 << bitIdx
	}
}

// Encode renders the bitfield as "meta_id:count:offset:base64(gzip(bits))".
func (b Bitfield) Encode() (string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(b.bits); err != nil {
		return "", fmt.Errorf("watchedbitfield: gzipping bits: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("watchedbitfield: closing gzip writer: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return fmt.Sprintf("%s:%d:%d:%s", b.MetaID, b.Count, b.Offset, encoded), nil
}

// Decode parses the "meta_id:count:offset:base64(gzip(bits))" format.
func Decode(s string) (Bitfield, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return Bitfield{}, fmt.Errorf("watchedbitfield: malformed value %q", s)
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil {
		return Bitfield{}, fmt.Errorf("watchedbitfield: invalid count: %w", err)
	}
	offset, err := strconv.Atoi(parts[2])
	if err != nil {
		return Bitfield{}, fmt.Errorf("watchedbitfield: invalid offset: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return Bitfield{}, fmt.Errorf("watchedbitfield: invalid base64: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return Bitfield{}, fmt.Errorf("watchedbitfield: invalid gzip: %w", err)
	}
	defer gz.Close()
	bits, err := io.ReadAll(gz)
	if err != nil {
		return Bitfield{}, fmt.Errorf("watchedbitfield: decompressing bits: %w", err)
	}
	return Bitfield{MetaID: parts[0], Count: count, Offset: offset, bits: bits}, nil
}

// Rekey migrates b onto a new video id list, matching watched state by
// video id rather than positional index, for when a meta's video list
// changes. Videos present in newIDs but not in oldIDs start unwatched.
func Rekey(b Bitfield, oldIDs, newIDs []string) Bitfield {
	watchedByID := make(map[string]bool, len(oldIDs))
	for i, id := range oldIDs {
		if b.Get(i) {
			watchedByID[id] = true
		}
	}
	out := New(b.MetaID, len(newIDs))
	for i, id := range newIDs {
		if watchedByID[id] {
			out.Set(i, true)
		}
	}
	return out
}
