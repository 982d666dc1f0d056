// Package nyaa turns pages and feeds published by the two Nyaa instances
// into typed records. It never performs I/O of its own: callers fetch the
// document and hand the body to one of the Parse functions.
//
// Document shape the engine relies on:
//   - category codes are "major_minor" strings carried in "/?c=" links and
//     in the feed's nyaa:categoryId field
//   - timestamps are epoch seconds in data-timestamp attributes
//   - listing rows carry their trust level as the first class of the <tr>
package nyaa

import (
	"net/url"
	"strings"
)

// Site identifies one of the two Nyaa instances. Category codes are only
// meaningful together with the site that issued them.
type Site int

const (
	SiteFun Site = iota + 1 // nyaa.si
	SiteFap                 // sukebei.nyaa.si
)

var siteBaseURLs = map[Site]string{
	SiteFun: "https://nyaa.si",
	SiteFap: "https://sukebei.nyaa.si",
}

var siteNames = map[Site]string{
	SiteFun: "fun",
	SiteFap: "fap",
}

// ParseSite accepts the short site name ("fun", "fap") or the host name.
func ParseSite(s string) (Site, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fun", "nyaa", "nyaa.si":
		return SiteFun, nil
	case "fap", "sukebei", "sukebei.nyaa.si":
		return SiteFap, nil
	}
	return 0, &UnknownValueError{Kind: KindSite, Value: s}
}

// Sites returns both known sites in a stable order.
func Sites() []Site {
	return []Site{SiteFun, SiteFap}
}

// Valid reports whether s is one of the known instances.
func (s Site) Valid() bool {
	_, ok := siteBaseURLs[s]
	return ok
}

// BaseURL returns the site's address without a trailing slash.
func (s Site) BaseURL() string {
	return siteBaseURLs[s]
}

func (s Site) String() string {
	if name, ok := siteNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the site by its short name.
func (s Site) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &UnknownValueError{Kind: KindSite, Value: s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Site) UnmarshalText(b []byte) error {
	site, err := ParseSite(string(b))
	if err != nil {
		return err
	}
	*s = site
	return nil
}

// absoluteURL resolves href against the site's base address. Addresses
// that already carry a scheme (including magnet links) are returned as is.
func (s Site) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil || ref.Scheme != "" {
		return href
	}
	base, err := url.Parse(s.BaseURL() + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
