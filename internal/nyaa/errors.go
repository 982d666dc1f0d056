package nyaa

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every error returned by the engine matches
// exactly one of them.
var (
	ErrStructure       = errors.New("unexpected document structure")
	ErrUnknownValue    = errors.New("unknown enumeration value")
	ErrTorrentNotFound = errors.New("torrent not found")
	ErrResourceLimit   = errors.New("resource limit exceeded")
	ErrInvalidQuery    = errors.New("invalid query")
)

// ErrTreeTooDeep is returned when a file list nests deeper than maxTreeDepth.
var ErrTreeTooDeep = fmt.Errorf("file tree deeper than %d levels: %w", maxTreeDepth, ErrResourceLimit)

// ParseError reports a missing or malformed element. Section names the part
// of the document being read ("row 3", "detail section 1", "comment 2", ...).
type ParseError struct {
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrStructure unless the cause is an unknown value or a
// resource limit; those stay reachable through Unwrap.
func (e *ParseError) Is(target error) bool {
	if target != ErrStructure {
		return false
	}
	return !errors.Is(e.Err, ErrUnknownValue) && !errors.Is(e.Err, ErrResourceLimit)
}

func wrapSection(section string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Section: section, Err: err}
}

// within prefixes the section of a nested ParseError with an outer one.
func within(outer string, err error) error {
	if pe, ok := err.(*ParseError); ok {
		return &ParseError{Section: outer + ": " + pe.Section, Err: pe.Err}
	}
	return wrapSection(outer, err)
}

func structural(section, format string, args ...any) error {
	return &ParseError{Section: section, Err: fmt.Errorf(format, args...)}
}

// ValueKind names the closed set an UnknownValueError fell outside of.
type ValueKind string

const (
	KindSite        ValueKind = "site"
	KindCategory    ValueKind = "category"
	KindTorrentType ValueKind = "torrent type"
	KindUserLevel   ValueKind = "user level"
	KindFilter      ValueKind = "quality filter"
	KindSortBy      ValueKind = "sort key"
	KindSortOrder   ValueKind = "sort order"
)

// UnknownValueError is returned when a color tag, category code, site or
// other enumerated token is outside the known set. The engine never maps
// such values to a default.
type UnknownValueError struct {
	Kind  ValueKind
	Value string
	Site  Site // set for category lookups
}

func (e *UnknownValueError) Error() string {
	if e.Kind == KindCategory && e.Site.Valid() {
		return fmt.Sprintf("unknown %s %q for site %s", e.Kind, e.Value, e.Site)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

func (e *UnknownValueError) Is(target error) bool { return target == ErrUnknownValue }

// TorrentNotFoundError is returned for a detail page the site reports as
// missing.
type TorrentNotFoundError struct {
	ViewID int
}

func (e *TorrentNotFoundError) Error() string {
	return fmt.Sprintf("torrent %d not found", e.ViewID)
}

func (e *TorrentNotFoundError) Is(target error) bool { return target == ErrTorrentNotFound }
