// Package content classifies raw clipboard payloads as text or image.
//
// Images travel through the system in data-URL form:
//
//	data:image/png;base64,<base64 bytes>
//
// A Payload is built once by Classify at the boundary and carries its Kind with
// it, so nothing downstream has to inspect the raw string again.
package content

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	imagePrefix = "data:image/"
	base64Token = "base64,"

	// ImageKeyLen is how many characters of an encoded image take part in
	// duplicate detection. Images that differ only past this point compare
	// equal; that is an accepted false-negative for new content.
	ImageKeyLen = 200
)

// ErrNotImage is returned by Decode for text payloads.
var ErrNotImage = errors.New("payload is not an image")

// Kind is the derived type of a payload.
type Kind int

const (
	Text Kind = iota
	Image
)

func (k Kind) String() string {
	if k == Image {
		return "image"
	}
	return "text"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values map to Text.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// ParseKind maps "image" to Image and anything else to Text.
func ParseKind(s string) Kind {
	if strings.EqualFold(s, "image") {
		return Image
	}
	return Text
}

// Payload is a classified clipboard payload.
type Payload struct {
	kind Kind
	raw  string
}

// Classify decides the kind of raw. It never fails.
func Classify(raw string) Payload {
	if IsImage(raw) {
		return Payload{kind: Image, raw: raw}
	}
	return Payload{kind: Text, raw: raw}
}

// IsImage reports whether raw is an encoded image: it must start with the
// data:image/ prefix and carry a base64 marker.
func IsImage(raw string) bool {
	return strings.HasPrefix(raw, imagePrefix) && strings.Contains(raw, base64Token)
}

func (p Payload) Kind() Kind    { return p.kind }
func (p Payload) Raw() string   { return p.raw }
func (p Payload) IsImage() bool { return p.kind == Image }

// Blank reports whether the payload is empty or whitespace only.
func (p Payload) Blank() bool { return strings.TrimSpace(p.raw) == "" }

// Key returns the comparison key used for duplicate detection: the trimmed
// text, or the first ImageKeyLen characters of an encoded image.
func (p Payload) Key() string {
	if p.kind == Image {
		if len(p.raw) > ImageKeyLen {
			return p.raw[:ImageKeyLen]
		}
		return p.raw
	}
	return strings.TrimSpace(p.raw)
}

// Equal reports whether two payloads are duplicates. Payloads of different
// kinds are never equal.
func (p Payload) Equal(o Payload) bool {
	return p.kind == o.kind && p.Key() == o.Key()
}

// MIME returns the media type of the payload, e.g. "image/png" or "text/plain".
func (p Payload) MIME() string {
	if p.kind != Image {
		return "text/plain"
	}
	head, _, _ := strings.Cut(p.raw, ",")
	head = strings.TrimPrefix(head, "data:")
	mime, _, _ := strings.Cut(head, ";")
	return mime
}

// Decode returns the raw image bytes of an image payload. The data part is
// everything after the first comma.
func (p Payload) Decode() ([]byte, error) {
	if p.kind != Image {
		return nil, ErrNotImage
	}
	_, data, ok := strings.Cut(p.raw, ",")
	if !ok {
		return nil, fmt.Errorf("invalid image encoding: missing data section")
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return b, nil
}

// EncodeImage builds the canonical data-URL form of an image.
func EncodeImage(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";" + base64Token + base64.StdEncoding.EncodeToString(data)
}
