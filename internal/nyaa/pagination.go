package nyaa

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	captionPattern = regexp.MustCompile(`^Displaying results (\d+)-(\d+) out of (\d+) results\.`)
	firstInt       = regexp.MustCompile(`\d+`)
)

// ResolvePagination derives the page state of a listing document. rows is
// the number of torrents already assembled from the same document; it
// decides whether a page without a pagination widget counts as a single
// page or as no page at all.
func ResolvePagination(doc Element, rows int) (Pagination, error) {
	var p Pagination

	if caption, ok := doc.Find("div.pagination-page-info"); ok {
		if err := p.readCaption(caption.Text()); err != nil {
			return Pagination{}, err
		}
	}

	widget, ok := doc.Find("ul.pagination")
	if !ok {
		if rows > 0 {
			p.CurrentPage = intPtr(1)
			p.AvailablePages = intPtr(1)
		}
		return p, nil
	}

	prev, err := pageLink(widget, "previous", "prev", true)
	if err != nil {
		return Pagination{}, err
	}
	p.PreviousPage = prev

	if active, ok := widget.Find("li.active a"); ok {
		n, err := leadingInt(active.Text())
		if err != nil {
			return Pagination{}, wrapSection("pagination", fmt.Errorf("active page: %w", err))
		}
		p.CurrentPage = &n
	}

	next, err := pageLink(widget, "next", "next", false)
	if err != nil {
		return Pagination{}, err
	}
	p.NextPage = next

	items := widget.FindAll("li")
	if len(items) < 2 {
		return Pagination{}, structural("pagination", "expected at least 2 items, got %d", len(items))
	}
	last, err := requireFind(items[len(items)-2], "pagination", "a")
	if err != nil {
		return Pagination{}, err
	}
	n, err := leadingInt(last.Text())
	if err != nil {
		return Pagination{}, wrapSection("pagination", fmt.Errorf("last page: %w", err))
	}
	p.AvailablePages = &n

	return p, nil
}

func (p *Pagination) readCaption(text string) error {
	m := captionPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return structural("pagination caption", "unrecognized text %q", strings.TrimSpace(text))
	}
	// the pattern only admits digits; Atoi can only fail on overflow
	var err error
	if p.DisplayingFrom, err = strconv.Atoi(m[1]); err != nil {
		return wrapSection("pagination caption", err)
	}
	if p.DisplayingTo, err = strconv.Atoi(m[2]); err != nil {
		return wrapSection("pagination caption", err)
	}
	if p.TotalResults, err = strconv.Atoi(m[3]); err != nil {
		return wrapSection("pagination caption", err)
	}
	if p.DisplayingFrom > p.DisplayingTo || p.DisplayingTo > p.TotalResults {
		return structural("pagination caption", "inconsistent range %d-%d of %d",
			p.DisplayingFrom, p.DisplayingTo, p.TotalResults)
	}
	return nil
}

// pageLink reads the target page of the enabled previous or next control.
// A disabled control yields nil. The previous link may omit its p
// parameter when it points at the first page.
func pageLink(widget Element, class, rel string, defaultFirst bool) (*int, error) {
	link, ok := widget.Find("li." + class + ":not(.disabled):not(.unavailable) a[href]")
	if !ok {
		if link, ok = widget.Find("li:not(.disabled):not(.unavailable) a[rel='" + rel + "']"); !ok {
			return nil, nil
		}
	}
	section := "pagination " + class
	href, err := requireAttr(link, section, "href")
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, wrapSection(section, err)
	}
	raw := u.Query().Get("p")
	if raw == "" {
		if defaultFirst {
			return intPtr(1), nil
		}
		return nil, structural(section, "link %q has no page parameter", href)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, structural(section, "invalid page %q", raw)
	}
	return &n, nil
}

func leadingInt(text string) (int, error) {
	m := firstInt.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no number in %q", strings.TrimSpace(text))
	}
	return strconv.Atoi(m)
}

func intPtr(n int) *int { return &n }
