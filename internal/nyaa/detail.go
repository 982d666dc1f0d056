package nyaa

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// detailSections is the number of div.row blocks of the metadata panel.
const detailSections = 5

var infoHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// ParseTorrentPage assembles the detail page of viewID. status is the HTTP
// status the page was served with; 404 yields a *TorrentNotFoundError and
// the body is not read.
func ParseTorrentPage(site Site, viewID, status int, r io.Reader) (*TorrentInfo, error) {
	if status == http.StatusNotFound {
		return nil, &TorrentNotFoundError{ViewID: viewID}
	}
	doc, err := NewDocument(r)
	if err != nil {
		return nil, err
	}
	return AssembleTorrentPage(site, viewID, doc)
}

// AssembleTorrentPage is ParseTorrentPage over an already parsed document
// served with a success status.
func AssembleTorrentPage(site Site, viewID int, doc Element) (*TorrentInfo, error) {
	if !site.Valid() {
		return nil, &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	info := &TorrentInfo{ViewID: viewID}

	heading, err := requireFind(doc, "name", "div.panel-heading h3.panel-title")
	if err != nil {
		return nil, err
	}
	info.Name = strings.TrimSpace(heading.Text())

	sections := doc.FindAll("div.panel-body div.row")
	if len(sections) < detailSections {
		return nil, structural("detail", "expected %d sections, got %d", detailSections, len(sections))
	}
	readers := []func(Site, Element, *TorrentInfo) error{
		readCategoryAndDate,
		readSubmitterAndSeeders,
		readInformationAndLeechers,
		readSizeAndCompleted,
		readInfoHash,
	}
	for i, read := range readers {
		if err := read(site, sections[i], info); err != nil {
			return nil, within(fmt.Sprintf("detail section %d", i), err)
		}
	}

	footer, err := requireFind(doc, "footer", "div.panel-footer")
	if err != nil {
		return nil, err
	}
	if info.TorrentURL, info.MagnetLink, err = downloadLinks(site, footer, "footer"); err != nil {
		return nil, err
	}

	desc, err := requireFind(doc, "description", "div#torrent-description")
	if err != nil {
		return nil, err
	}
	info.Description = strings.TrimSpace(desc.Text())

	list, err := requireFind(doc, "files", "div.torrent-file-list")
	if err != nil {
		return nil, err
	}
	if info.Files, err = BuildFileTree(list); err != nil {
		return nil, err
	}

	if info.TotalComments, err = commentTotal(doc); err != nil {
		return nil, err
	}
	if info.Comments, err = assembleComments(site, doc); err != nil {
		return nil, err
	}
	return info, nil
}

// readCategoryAndDate takes the last category link, which is the most
// specific one ("Anime" then "English-translated").
func readCategoryAndDate(site Site, s Element, info *TorrentInfo) error {
	links := s.FindAll("a[href^='/?c=']")
	if len(links) == 0 {
		return structural("category", "no category link")
	}
	var err error
	if info.Category, err = categoryOf(site, links[len(links)-1], "category"); err != nil {
		return err
	}
	date, err := requireFind(s, "date", "div[data-timestamp]")
	if err != nil {
		return err
	}
	info.Timestamp, err = epochAttr(date, "date")
	return err
}

func readSubmitterAndSeeders(site Site, s Element, info *TorrentInfo) error {
	if link, ok := s.Find("a[href^='/user/']"); ok {
		u, err := userFromLink(site, link, "submitter")
		if err != nil {
			return err
		}
		info.Submitter = &u
	}
	span, err := requireFind(s, "seeders", "span[style='color: green;']")
	if err != nil {
		return err
	}
	info.Seeders, err = count(span.Text(), "seeders")
	return err
}

func readInformationAndLeechers(_ Site, s Element, info *TorrentInfo) error {
	field, err := requireFind(s, "information", "div.col-md-5")
	if err != nil {
		return err
	}
	info.Information = strings.TrimSpace(field.Text())
	span, err := requireFind(s, "leechers", "span[style='color: red;']")
	if err != nil {
		return err
	}
	info.Leechers, err = count(span.Text(), "leechers")
	return err
}

func readSizeAndCompleted(_ Site, s Element, info *TorrentInfo) error {
	fields := s.FindAll("div.col-md-5")
	if len(fields) < 2 {
		return structural("size", "expected 2 fields, got %d", len(fields))
	}
	info.Size = strings.TrimSpace(fields[0].Text())
	var err error
	info.Completed, err = count(fields[1].Text(), "completed")
	return err
}

func readInfoHash(_ Site, s Element, info *TorrentInfo) error {
	kbd, err := requireFind(s, "info hash", "kbd")
	if err != nil {
		return err
	}
	hash := strings.TrimSpace(kbd.Text())
	if !infoHashPattern.MatchString(hash) {
		return structural("info hash", "malformed %q", hash)
	}
	info.InfoHash = hash
	return nil
}

func userFromLink(site Site, link Element, section string) (User, error) {
	href, err := requireAttr(link, section, "href")
	if err != nil {
		return User{}, err
	}
	name := strings.TrimPrefix(href, "/user/")
	if name == "" {
		return User{}, structural(section, "empty user link")
	}
	return User{Username: name, ProfileURL: site.absoluteURL(href)}, nil
}

// commentTotal reads N from the "Comments - N" heading.
func commentTotal(doc Element) (int, error) {
	heading, err := requireFind(doc, "comments", "div#comments div.panel-heading h3.panel-title")
	if err != nil {
		return 0, err
	}
	text := heading.Text()
	i := strings.LastIndex(text, "-")
	if i < 0 {
		return 0, structural("comments", "unrecognized heading %q", strings.TrimSpace(text))
	}
	return count(text[i+1:], "comments")
}

func assembleComments(site Site, doc Element) ([]Comment, error) {
	panels := doc.FindAll("div#comments div.comment-panel")
	comments := make([]Comment, 0, len(panels))
	for i, panel := range panels {
		c, err := assembleComment(site, panel)
		if err != nil {
			return nil, within(fmt.Sprintf("comment %d", i+1), err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// assembleComment reads one comment panel. Its id attribute is "com-N".
func assembleComment(site Site, panel Element) (Comment, error) {
	var c Comment

	id, err := requireAttr(panel, "id", "id")
	if err != nil {
		return c, err
	}
	_, num, _ := strings.Cut(id, "-")
	if c.ID, err = strconv.Atoi(num); err != nil {
		return c, structural("id", "bad comment id %q", id)
	}

	link, err := requireFind(panel, "user", "a[href^='/user/']")
	if err != nil {
		return c, err
	}
	if c.User, err = userFromLink(site, link, "user"); err != nil {
		return c, err
	}
	if avatar, ok := panel.Find("img.avatar"); ok {
		if src, ok := avatar.Attr("src"); ok {
			c.User.PhotoURL = site.absoluteURL(src)
		}
	}

	title, err := requireAttr(link, "user", "title")
	if err != nil {
		return c, err
	}
	c.Banned = isBanned(title)
	if c.Level, err = ParseUserLevel(title); err != nil {
		return c, err
	}

	byline, err := requireFind(panel, "uploader", "div.col-md-2 p")
	if err != nil {
		return c, err
	}
	c.Uploader = strings.Contains(byline.Text(), "(uploader)")

	date, err := requireFind(panel, "date", "small[data-timestamp]")
	if err != nil {
		return c, err
	}
	if c.Timestamp, err = epochAttr(date, "date"); err != nil {
		return c, err
	}

	body, err := requireFind(panel, "text", "div.comment-content")
	if err != nil {
		return c, err
	}
	c.Text = strings.TrimSpace(body.Text())
	return c, nil
}
