package nyaa

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTorrentPage(t *testing.T) {
	info, err := ParseTorrentPage(SiteFun, 1700001, http.StatusOK, openFixture(t, "view.html"))
	require.NoError(t, err)

	assert.Equal(t, 1700001, info.ViewID)
	assert.Equal(t, "[Group] Show - 01 [1080p].mkv", info.Name)
	assert.Equal(t, FunAnimeEnglishTranslated, info.Category)
	assert.Equal(t, epoch(1700000000), info.Timestamp)
	assert.Equal(t, &User{Username: "uploader", ProfileURL: "https://nyaa.si/user/uploader"}, info.Submitter)
	assert.Equal(t, 120, info.Seeders)
	assert.Equal(t, "https://group.example.org/", info.Information)
	assert.Equal(t, 8, info.Leechers)
	assert.Equal(t, "1.4 GiB", info.Size)
	assert.Equal(t, 3402, info.Completed)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", info.InfoHash)
	assert.Equal(t, "https://nyaa.si/download/1700001.torrent", info.TorrentURL)
	assert.True(t, strings.HasPrefix(info.MagnetLink, "magnet:?xt=urn:btih:0123456789abcdef"))
	assert.True(t, strings.HasPrefix(info.Description, "Episode one of **Show**."))

	assert.Equal(t, []Entry{
		Folder{Name: "A", Entries: []Entry{
			Folder{Name: "B", Entries: []Entry{
				File{Name: "file.txt", Size: "10 MiB"},
			}},
		}},
		File{Name: "readme.nfo", Size: "1.2 KiB"},
	}, info.Files)

	assert.Equal(t, 2, info.TotalComments)
	require.Len(t, info.Comments, 2)
	assert.Equal(t, Comment{
		ID: 11,
		User: User{
			Username:   "uploader",
			ProfileURL: "https://nyaa.si/user/uploader",
			PhotoURL:   "https://nyaa.si/static/img/avatar/default.png",
		},
		Level:     LevelTrusted,
		Uploader:  true,
		Banned:    false,
		Timestamp: epoch(1700000100),
		Text:      "Batch next week.",
	}, info.Comments[0])

	troll := info.Comments[1]
	assert.Equal(t, 12, troll.ID)
	assert.Equal(t, "troll", troll.User.Username)
	assert.Equal(t, "https://i.example.com/avatars/troll.png", troll.User.PhotoURL)
	assert.Equal(t, LevelUser, troll.Level)
	assert.True(t, troll.Banned)
	assert.False(t, troll.Uploader)
	assert.Equal(t, "first", troll.Text)
}

func TestParseTorrentPage_Anonymous(t *testing.T) {
	info, err := ParseTorrentPage(SiteFun, 1700001, http.StatusOK, openFixture(t, "view_anonymous.html"))
	require.NoError(t, err)
	assert.Nil(t, info.Submitter)
	assert.Equal(t, 0, info.TotalComments)
	assert.Empty(t, info.Comments)
	assert.Equal(t, 120, info.Seeders)
}

func TestParseTorrentPage_NotFound(t *testing.T) {
	_, err := ParseTorrentPage(SiteFun, 999, http.StatusNotFound, strings.NewReader("<html><body>404 Not Found</body></html>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTorrentNotFound))
	assert.False(t, errors.Is(err, ErrStructure))

	var nf *TorrentNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 999, nf.ViewID)
}

func TestParseTorrentPage_Malformed(t *testing.T) {
	_, err := ParseTorrentPage(SiteFun, 1700001, http.StatusOK, openFixture(t, "view_malformed.html"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.False(t, errors.Is(err, ErrTorrentNotFound))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "detail section 4: info hash", pe.Section)
}

func TestParseTorrentPage_TruncatedPage(t *testing.T) {
	_, err := ParseTorrentPage(SiteFun, 5, http.StatusOK, strings.NewReader(
		`<html><body><div class="panel-heading"><h3 class="panel-title">x</h3></div></body></html>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "expected 5 sections")
}

func TestParseTorrentPage_UnknownCommenterLevel(t *testing.T) {
	b, err := readFixture("view.html")
	require.NoError(t, err)
	page := strings.Replace(string(b), `title="BANNED User"`, `title="Overlord"`, 1)

	_, err = ParseTorrentPage(SiteFun, 1700001, http.StatusOK, strings.NewReader(page))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownValue))
	assert.Contains(t, err.Error(), "comment 2")
}
