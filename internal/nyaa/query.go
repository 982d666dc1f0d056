package nyaa

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// QualityFilter is the site's server-side trust filter (the f parameter).
type QualityFilter int

const (
	NoFilter QualityFilter = iota
	NoRemakes
	TrustedOnly
)

var filterNames = map[QualityFilter]string{
	NoFilter:    "no_filter",
	NoRemakes:   "no_remakes",
	TrustedOnly: "trusted_only",
}

// ParseQualityFilter accepts a filter name ("no_remakes") or its numeric code.
func ParseQualityFilter(s string) (QualityFilter, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for f, name := range filterNames {
		if norm == name || norm == strconv.Itoa(int(f)) {
			return f, nil
		}
	}
	if norm == "" || norm == "none" {
		return NoFilter, nil
	}
	return 0, &UnknownValueError{Kind: KindFilter, Value: s}
}

func (f QualityFilter) Valid() bool {
	_, ok := filterNames[f]
	return ok
}

func (f QualityFilter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return strconv.Itoa(int(f))
}

// SortBy is the listing sort key (the s parameter). The zero value leaves
// the site's default order.
type SortBy string

const (
	SortComments  SortBy = "comments"
	SortSize      SortBy = "size"
	SortDate      SortBy = "id"
	SortSeeders   SortBy = "seeders"
	SortLeechers  SortBy = "leechers"
	SortCompleted SortBy = "downloads"
)

// ParseSortBy accepts the parameter value or the friendlier "date" and
// "completed" aliases. An empty string selects the default order.
func ParseSortBy(s string) (SortBy, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return "", nil
	case "date":
		return SortDate, nil
	case "completed":
		return SortCompleted, nil
	default:
		if k := SortBy(v); k.Valid() {
			return k, nil
		}
	}
	return "", &UnknownValueError{Kind: KindSortBy, Value: s}
}

// Valid reports whether k is a known key. The empty key is valid.
func (k SortBy) Valid() bool {
	switch k {
	case "", SortComments, SortSize, SortDate, SortSeeders, SortLeechers, SortCompleted:
		return true
	}
	return false
}

// SortOrder is the listing sort direction (the o parameter).
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder accepts "asc"/"desc" or their long forms.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", &UnknownValueError{Kind: KindSortOrder, Value: s}
}

func (o SortOrder) Valid() bool {
	return o == "" || o == Ascending || o == Descending
}

// SearchQuery describes one listing page request. A nil Category means
// the site's "all categories"; Page 0 means the first page.
type SearchQuery struct {
	Term      string
	Username  string
	Filter    QualityFilter
	Category  Category
	SortBy    SortBy
	SortOrder SortOrder
	Page      int
}

// URL encodes the query for site: base[/user/<name>]?q=&f=&c=&s=&o=&p=.
func (q SearchQuery) URL(site Site) (string, error) {
	base, code, err := queryBase(site, q.Filter, q.Category)
	if err != nil {
		return "", err
	}
	if !q.SortBy.Valid() {
		return "", &UnknownValueError{Kind: KindSortBy, Value: string(q.SortBy)}
	}
	if !q.SortOrder.Valid() {
		return "", &UnknownValueError{Kind: KindSortOrder, Value: string(q.SortOrder)}
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return "", fmt.Errorf("page %d: %w", page, ErrInvalidQuery)
	}

	if q.Username != "" {
		base += "/user/" + url.PathEscape(q.Username)
	} else {
		base += "/"
	}
	v := url.Values{}
	if q.Term != "" {
		v.Set("q", q.Term)
	}
	v.Set("f", strconv.Itoa(int(q.Filter)))
	v.Set("c", code)
	if q.SortBy != "" {
		v.Set("s", string(q.SortBy))
	}
	if q.SortOrder != "" {
		v.Set("o", string(q.SortOrder))
	}
	v.Set("p", strconv.Itoa(page))
	return base + "?" + v.Encode(), nil
}

// FeedQuery describes an RSS request.
type FeedQuery struct {
	Term     string
	Username string
	Filter   QualityFilter
	Category Category
}

// URL encodes the query for site: base/?page=rss&q=&u=&f=&c=.
func (q FeedQuery) URL(site Site) (string, error) {
	base, code, err := queryBase(site, q.Filter, q.Category)
	if err != nil {
		return "", err
	}
	v := url.Values{}
	v.Set("page", "rss")
	if q.Term != "" {
		v.Set("q", q.Term)
	}
	if q.Username != "" {
		v.Set("u", q.Username)
	}
	v.Set("f", strconv.Itoa(int(q.Filter)))
	v.Set("c", code)
	return base + "/?" + v.Encode(), nil
}

// ViewURL is the address of a torrent's detail page.
func ViewURL(site Site, viewID int) string {
	return site.BaseURL() + "/view/" + strconv.Itoa(viewID)
}

// queryBase validates the parts shared by listing and feed queries and
// returns the site base address with the category code to send.
func queryBase(site Site, f QualityFilter, c Category) (string, string, error) {
	if !site.Valid() {
		return "", "", &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	if !f.Valid() {
		return "", "", &UnknownValueError{Kind: KindFilter, Value: f.String()}
	}
	if c == nil {
		all, err := AllCategories(site)
		if err != nil {
			return "", "", err
		}
		c = all
	}
	if c.Site() != site {
		return "", "", &UnknownValueError{Kind: KindCategory, Value: c.Code(), Site: site}
	}
	return site.BaseURL(), c.Code(), nil
}
