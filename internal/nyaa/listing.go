package nyaa

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// centeredCells is the number of td.text-center cells in a listing row:
// links, size, date, seeders, leechers, completed.
const centeredCells = 6

// ParseSearchPage assembles a listing page fetched from site.
func ParseSearchPage(site Site, r io.Reader) (*SearchResult, error) {
	doc, err := NewDocument(r)
	if err != nil {
		return nil, err
	}
	return AssembleSearchPage(site, doc)
}

// AssembleSearchPage is ParseSearchPage over an already parsed document.
func AssembleSearchPage(site Site, doc Element) (*SearchResult, error) {
	if !site.Valid() {
		return nil, &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	rows := doc.FindAll("table.torrent-list tbody tr")
	torrents := make([]SearchResultTorrent, 0, len(rows))
	for i, row := range rows {
		t, err := AssembleRow(site, row)
		if err != nil {
			return nil, within(fmt.Sprintf("row %d", i+1), err)
		}
		torrents = append(torrents, t)
	}
	p, err := ResolvePagination(doc, len(torrents))
	if err != nil {
		return nil, err
	}
	return &SearchResult{Torrents: torrents, Pagination: p}, nil
}

// AssembleRow converts one listing <tr> into a SearchResultTorrent. The
// centered cells are read by position, so a row with any other cell count
// is a structural error.
func AssembleRow(site Site, row Element) (SearchResultTorrent, error) {
	var t SearchResultTorrent

	class, err := requireAttr(row, "row", "class")
	if err != nil {
		return t, err
	}
	if t.Type, err = TypeFromTag(strings.Fields(class)[0]); err != nil {
		return t, err
	}

	if t.Category, err = categoryFromLink(site, row, "category"); err != nil {
		return t, err
	}

	icon, err := requireFind(row, "category", "img.category-icon")
	if err != nil {
		return t, err
	}
	src, err := requireAttr(icon, "category", "src")
	if err != nil {
		return t, err
	}
	t.CategoryIconURL = site.absoluteURL(src)

	if err := readTitleColumn(row, &t); err != nil {
		return t, err
	}

	cells := row.FindAll("td.text-center")
	if len(cells) != centeredCells {
		return t, structural("cells", "expected %d centered cells, got %d", centeredCells, len(cells))
	}
	if t.TorrentURL, t.MagnetLink, err = downloadLinks(site, cells[0], "links"); err != nil {
		return t, err
	}
	t.Size = strings.TrimSpace(cells[1].Text())
	if t.Timestamp, err = epochAttr(cells[2], "date"); err != nil {
		return t, err
	}
	if t.Seeders, err = count(cells[3].Text(), "seeders"); err != nil {
		return t, err
	}
	if t.Leechers, err = count(cells[4].Text(), "leechers"); err != nil {
		return t, err
	}
	if t.Completed, err = count(cells[5].Text(), "completed"); err != nil {
		return t, err
	}
	return t, nil
}

// readTitleColumn picks the view link and the optional comments link out
// of the title cell. The name comes from the view link's title attribute
// since its text may be truncated.
func readTitleColumn(row Element, t *SearchResultTorrent) error {
	found := false
	for _, a := range row.FindAll("td[colspan='2'] a") {
		if hasClass(a, "comments") {
			n, err := count(a.Text(), "comments")
			if err != nil {
				return err
			}
			t.TotalComments = n
			continue
		}
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "/view/") {
			continue
		}
		id, err := viewIDFrom(strings.TrimPrefix(href, "/view/"))
		if err != nil {
			return structural("title", "bad view link %q", href)
		}
		name, err := requireAttr(a, "title", "title")
		if err != nil {
			return err
		}
		t.ViewID, t.Name = id, name
		found = true
	}
	if !found {
		return structural("title", "no view link")
	}
	return nil
}

// categoryFromLink resolves the code of the element's first "/?c=" link.
func categoryFromLink(site Site, e Element, section string) (Category, error) {
	link, err := requireFind(e, section, "a[href^='/?c=']")
	if err != nil {
		return nil, err
	}
	return categoryOf(site, link, section)
}

func categoryOf(site Site, link Element, section string) (Category, error) {
	href, err := requireAttr(link, section, "href")
	if err != nil {
		return nil, err
	}
	return ResolveCategory(site, strings.TrimPrefix(href, "/?c="))
}

func downloadLinks(site Site, e Element, section string) (torrent, magnet string, err error) {
	dl, err := requireFind(e, section, "a[href^='/download/']")
	if err != nil {
		return "", "", err
	}
	href, err := requireAttr(dl, section, "href")
	if err != nil {
		return "", "", err
	}
	mg, err := requireFind(e, section, "a[href^='magnet:?xt=']")
	if err != nil {
		return "", "", err
	}
	magnet, err = requireAttr(mg, section, "href")
	if err != nil {
		return "", "", err
	}
	return site.absoluteURL(href), magnet, nil
}

// epochAttr reads a data-timestamp attribute as epoch seconds in UTC.
func epochAttr(e Element, section string) (time.Time, error) {
	raw, err := requireAttr(e, section, "data-timestamp")
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, structural(section, "bad timestamp %q", raw)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// viewIDFrom parses the numeric tail of a /view/ link. IDs start at 1.
func viewIDFrom(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, fmt.Errorf("view id %d out of range", id)
	}
	return id, nil
}

// count parses a non-negative integer display value.
func count(text, section string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, structural(section, "bad count %q", text)
	}
	return n, nil
}

func hasClass(e Element, class string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
