package nyaa

import (
	"encoding/json"
	"time"
)

// SearchResultTorrent is one row of a listing page.
type SearchResultTorrent struct {
	Type            TorrentType `json:"type" yaml:"type"`
	ViewID          int         `json:"view_id" yaml:"view_id"`
	Name            string      `json:"name" yaml:"name"`
	Category        Category    `json:"category" yaml:"category"`
	CategoryIconURL string      `json:"category_icon_url" yaml:"category_icon_url"`
	TorrentURL      string      `json:"torrent_url" yaml:"torrent_url"`
	MagnetLink      string      `json:"magnet_link" yaml:"magnet_link"`
	Size            string      `json:"size" yaml:"size"`
	Timestamp       time.Time   `json:"timestamp" yaml:"timestamp"`
	Seeders         int         `json:"seeders" yaml:"seeders"`
	Leechers        int         `json:"leechers" yaml:"leechers"`
	Completed       int         `json:"completed" yaml:"completed"`
	TotalComments   int         `json:"total_comments" yaml:"total_comments"`
}

// Pagination is the page state of one listing. Nil page fields are unset:
// a disabled previous control leaves PreviousPage nil, never 1.
type Pagination struct {
	DisplayingFrom int  `json:"displaying_from" yaml:"displaying_from"`
	DisplayingTo   int  `json:"displaying_to" yaml:"displaying_to"`
	TotalResults   int  `json:"total_results" yaml:"total_results"`
	CurrentPage    *int `json:"current_page,omitempty" yaml:"current_page,omitempty"`
	PreviousPage   *int `json:"previous_page,omitempty" yaml:"previous_page,omitempty"`
	NextPage       *int `json:"next_page,omitempty" yaml:"next_page,omitempty"`
	AvailablePages *int `json:"available_pages,omitempty" yaml:"available_pages,omitempty"`
}

// SearchResult is a listing page: its rows in document order plus the
// page state.
type SearchResult struct {
	Torrents   []SearchResultTorrent `json:"torrents" yaml:"torrents"`
	Pagination `yaml:",inline"`
}

// User is a submitter or commenter. PhotoURL is empty when the page shows
// no avatar.
type User struct {
	Username   string `json:"username" yaml:"username"`
	ProfileURL string `json:"profile_url" yaml:"profile_url"`
	PhotoURL   string `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
}

// Entry is a node of a torrent's file list: either a File or a Folder.
type Entry interface {
	EntryName() string
	entry()
}

// File is a leaf of the file list. Size is the site's display string.
type File struct {
	Name string
	Size string
}

// Folder owns its entries in document order.
type Folder struct {
	Name    string
	Entries []Entry
}

func (f File) EntryName() string { return f.Name }
func (f Folder) EntryName() string { return f.Name }
func (File) entry() {}
func (Folder) entry() {}

type fileView struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	Size string `json:"size" yaml:"size"`
}

type folderView struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileView{Kind: "file", Name: f.Name, Size: f.Size})
}

func (f Folder) MarshalJSON() ([]byte, error) {
	return json.Marshal(folderView{Kind: "folder", Name: f.Name, Entries: nonNil(f.Entries)})
}

func (f File) MarshalYAML() (any, error) {
	return fileView{Kind: "file", Name: f.Name, Size: f.Size}, nil
}

func (f Folder) MarshalYAML() (any, error) {
	return folderView{Kind: "folder", Name: f.Name, Entries: nonNil(f.Entries)}, nil
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}

// WalkFiles calls fn for every File below entries, depth first, with the
// names of the folders leading to it.
func WalkFiles(entries []Entry, fn func(dirs []string, f File)) {
	walkFiles(entries, nil, fn)
}

func walkFiles(entries []Entry, dirs []string, fn func([]string, File)) {
	for _, e := range entries {
		switch n := e.(type) {
		case File:
			fn(dirs, n)
		case Folder:
			walkFiles(n.Entries, append(dirs[:len(dirs):len(dirs)], n.Name), fn)
		}
	}
}

// Comment is one comment panel of a detail page.
type Comment struct {
	ID        int       `json:"id" yaml:"id"`
	User      User      `json:"user" yaml:"user"`
	Level     UserLevel `json:"level" yaml:"level"`
	Uploader  bool      `json:"is_uploader" yaml:"is_uploader"`
	Banned    bool      `json:"is_banned" yaml:"is_banned"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Text      string    `json:"text" yaml:"text"`
}

// TorrentInfo is a complete detail page. Submitter is nil for anonymous
// uploads.
type TorrentInfo struct {
	ViewID        int       `json:"view_id" yaml:"view_id"`
	Name          string    `json:"name" yaml:"name"`
	Category      Category  `json:"category" yaml:"category"`
	TorrentURL    string    `json:"torrent_url" yaml:"torrent_url"`
	MagnetLink    string    `json:"magnet_link" yaml:"magnet_link"`
	Size          string    `json:"size" yaml:"size"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Seeders       int       `json:"seeders" yaml:"seeders"`
	Leechers      int       `json:"leechers" yaml:"leechers"`
	Completed     int       `json:"completed" yaml:"completed"`
	InfoHash      string    `json:"info_hash" yaml:"info_hash"`
	Submitter     *User     `json:"submitter" yaml:"submitter"`
	Information   string    `json:"information" yaml:"information"`
	Description   string    `json:"description" yaml:"description"`
	Files         []Entry   `json:"files" yaml:"files"`
	TotalComments int       `json:"total_comments" yaml:"total_comments"`
	Comments      []Comment `json:"comments" yaml:"comments"`
}

// Feed is a parsed RSS listing.
type Feed struct {
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Torrents    []FeedTorrent `json:"torrents" yaml:"torrents"`
}

// FeedTorrent is one feed item. Published keeps the raw date string next
// to the parsed PublishedAt.
type FeedTorrent struct {
	Type          TorrentType `json:"type" yaml:"type"`
	ViewID        int         `json:"view_id" yaml:"view_id"`
	Name          string      `json:"name" yaml:"name"`
	Category      Category    `json:"category" yaml:"category"`
	Size          string      `json:"size" yaml:"size"`
	Published     string      `json:"published" yaml:"published"`
	PublishedAt   time.Time   `json:"published_at" yaml:"published_at"`
	TorrentURL    string      `json:"torrent_url" yaml:"torrent_url"`
	Seeders       int         `json:"seeders" yaml:"seeders"`
	Leechers      int         `json:"leechers" yaml:"leechers"`
	Completed     int         `json:"completed" yaml:"completed"`
	InfoHash      string      `json:"info_hash" yaml:"info_hash"`
	Description   string      `json:"description" yaml:"description"`
	TotalComments int         `json:"total_comments" yaml:"total_comments"`
}
