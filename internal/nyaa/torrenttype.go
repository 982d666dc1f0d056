package nyaa

import "strings"

// TorrentType is the trust classification the site gives a torrent.
type TorrentType string

const (
	TypeNormal  TorrentType = "normal"
	TypeTrusted TorrentType = "trusted"
	TypeRemake  TorrentType = "remake"
	TypeBatch   TorrentType = "batch"
	TypeHidden  TorrentType = "hidden"
)

// rowTags maps the listing row's first class to its classification.
// Batch has no tag of its own on the site.
var rowTags = map[string]TorrentType{
	"default": TypeNormal,
	"success": TypeTrusted,
	"danger":  TypeRemake,
	"warning": TypeHidden,
}

// TypeFromTag maps a listing row's color class to a TorrentType. Unknown
// tags fail with an UnknownValueError instead of falling back to normal.
func TypeFromTag(tag string) (TorrentType, error) {
	if t, ok := rowTags[strings.TrimSpace(tag)]; ok {
		return t, nil
	}
	return "", &UnknownValueError{Kind: KindTorrentType, Value: tag}
}

// ParseTorrentType accepts the classification's own name ("trusted", ...).
func ParseTorrentType(s string) (TorrentType, error) {
	switch t := TorrentType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeNormal, TypeTrusted, TypeRemake, TypeBatch, TypeHidden:
		return t, nil
	}
	return "", &UnknownValueError{Kind: KindTorrentType, Value: s}
}

func (t TorrentType) String() string { return string(t) }

// typeFromFlags classifies a feed entry from its nyaa:trusted and
// nyaa:remake fields. Trusted wins when both are set.
func typeFromFlags(trusted, remake string) TorrentType {
	switch {
	case strings.EqualFold(strings.TrimSpace(trusted), "yes"):
		return TypeTrusted
	case strings.EqualFold(strings.TrimSpace(remake), "yes"):
		return TypeRemake
	}
	return TypeNormal
}
