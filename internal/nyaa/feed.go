package nyaa

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// feedNamespace is the prefix of the site's RSS extension elements.
const feedNamespace = "nyaa"

// ParseFeed assembles the RSS listing of site.
func ParseFeed(site Site, r io.Reader) (*Feed, error) {
	parsed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, wrapSection("feed", fmt.Errorf("failed to parse feed: %w", err))
	}
	return AssembleFeed(site, parsed)
}

// AssembleFeed is ParseFeed over an already parsed gofeed document.
func AssembleFeed(site Site, parsed *gofeed.Feed) (*Feed, error) {
	if !site.Valid() {
		return nil, &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	feed := &Feed{
		Title:       parsed.Title,
		Description: parsed.Description,
		Torrents:    make([]FeedTorrent, 0, len(parsed.Items)),
	}
	for i, item := range parsed.Items {
		t, err := AssembleFeedItem(site, item)
		if err != nil {
			return nil, within(fmt.Sprintf("item %d", i+1), err)
		}
		feed.Torrents = append(feed.Torrents, t)
	}
	return feed, nil
}

// AssembleFeedItem converts one feed item. Its trust level comes from the
// nyaa:trusted and nyaa:remake flags since the feed carries no row colors.
func AssembleFeedItem(site Site, item *gofeed.Item) (FeedTorrent, error) {
	fields := item.Extensions[feedNamespace]
	t := FeedTorrent{
		Type:        typeFromFlags(extValue(fields, "trusted"), extValue(fields, "remake")),
		Name:        strings.TrimSpace(item.Title),
		Published:   item.Published,
		TorrentURL:  item.Link,
		Description: item.Description,
	}

	_, id, ok := strings.Cut(item.GUID, "/view/")
	if !ok {
		return t, structural("guid", "no view path in %q", item.GUID)
	}
	var err error
	if t.ViewID, err = viewIDFrom(id); err != nil {
		return t, structural("guid", "bad view id %q", id)
	}

	if item.PublishedParsed == nil {
		return t, structural("pubDate", "unparseable date %q", item.Published)
	}
	t.PublishedAt = item.PublishedParsed.UTC()

	code, err := requireExt(fields, "categoryId")
	if err != nil {
		return t, err
	}
	if t.Category, err = ResolveCategory(site, code); err != nil {
		return t, err
	}
	if t.Size, err = requireExt(fields, "size"); err != nil {
		return t, err
	}
	if t.InfoHash, err = requireExt(fields, "infoHash"); err != nil {
		return t, err
	}

	counts := []struct {
		name string
		dst  *int
	}{
		{"seeders", &t.Seeders},
		{"leechers", &t.Leechers},
		{"downloads", &t.Completed},
		{"comments", &t.TotalComments},
	}
	for _, c := range counts {
		raw, err := requireExt(fields, c.name)
		if err != nil {
			return t, err
		}
		if *c.dst, err = count(raw, c.name); err != nil {
			return t, err
		}
	}
	return t, nil
}

// extValue returns the text of the first nyaa:<name> element, or "".
func extValue(fields map[string][]ext.Extension, name string) string {
	if values := fields[name]; len(values) > 0 {
		return strings.TrimSpace(values[0].Value)
	}
	for key, values := range fields {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(values[0].Value)
		}
	}
	return ""
}

func requireExt(fields map[string][]ext.Extension, name string) (string, error) {
	v := extValue(fields, name)
	if v == "" {
		return "", structural(feedNamespace+":"+name, "missing element")
	}
	return v, nil
}
