package nyaa

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed(SiteFun, openFixture(t, "feed.xml"))
	require.NoError(t, err)

	assert.Equal(t, `Nyaa - "show" - Torrent File RSS`, feed.Title)
	assert.Equal(t, `RSS Feed for "show"`, feed.Description)
	require.Len(t, feed.Torrents, 3)

	first := feed.Torrents[0]
	assert.Equal(t, TypeTrusted, first.Type)
	assert.Equal(t, 1700001, first.ViewID)
	assert.Equal(t, "[Group] Show - 01 [1080p].mkv", first.Name)
	assert.Equal(t, FunAnimeEnglishTranslated, first.Category)
	assert.Equal(t, "1.4 GiB", first.Size)
	assert.Contains(t, first.Published, "14 Nov 2023 22:13:20")
	assert.True(t, first.PublishedAt.Equal(time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)))
	assert.Equal(t, "https://nyaa.si/download/1700001.torrent", first.TorrentURL)
	assert.Equal(t, 120, first.Seeders)
	assert.Equal(t, 8, first.Leechers)
	assert.Equal(t, 3402, first.Completed)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", first.InfoHash)
	assert.Equal(t, 4, first.TotalComments)
	assert.Contains(t, first.Description, "#1700001")

	assert.Equal(t, TypeRemake, feed.Torrents[1].Type)
	assert.Equal(t, FunAnimeRaw, feed.Torrents[1].Category)
	assert.Equal(t, TypeNormal, feed.Torrents[2].Type)
	assert.Equal(t, FunAudioLossless, feed.Torrents[2].Category)
}

func TestParseFeed_CategoriesFollowSite(t *testing.T) {
	feed, err := ParseFeed(SiteFap, openFixture(t, "feed.xml"))
	require.NoError(t, err)
	assert.Equal(t, FapArtDoujinshi, feed.Torrents[0].Category)
	assert.Equal(t, FapArtManga, feed.Torrents[1].Category)
	assert.Equal(t, FapRealLifePhotobooksAndPictures, feed.Torrents[2].Category)
}

const feedItemTemplate = `<?xml version="1.0" encoding="utf-8"?>
<rss xmlns:nyaa="https://nyaa.si/xmlns/nyaa" version="2.0"><channel>
<title>t</title><description>d</description><link>https://nyaa.si/</link>
<item>
<title>x</title>
<link>https://nyaa.si/download/7.torrent</link>
<guid isPermaLink="true">%GUID%</guid>
<pubDate>Tue, 14 Nov 2023 22:13:20 -0000</pubDate>
%FIELDS%
</item>
</channel></rss>`

const feedFields = `<nyaa:seeders>1</nyaa:seeders>
<nyaa:leechers>2</nyaa:leechers>
<nyaa:downloads>3</nyaa:downloads>
<nyaa:infoHash>5555555555555555555555555555555555555555</nyaa:infoHash>
<nyaa:categoryId>%CAT%</nyaa:categoryId>
<nyaa:size>1 KiB</nyaa:size>
<nyaa:comments>0</nyaa:comments>`

func feedDoc(guid, cat string, drop string) string {
	fields := strings.Replace(feedFields, "%CAT%", cat, 1)
	if drop != "" {
		fields = strings.Replace(fields, drop, "", 1)
	}
	return strings.NewReplacer("%GUID%", guid, "%FIELDS%", fields).Replace(feedItemTemplate)
}

func TestParseFeed_Errors(t *testing.T) {
	feed, err := ParseFeed(SiteFun, strings.NewReader(feedDoc("https://nyaa.si/view/7", "3_3", "")))
	require.NoError(t, err)
	require.Len(t, feed.Torrents, 1)
	assert.Equal(t, TypeNormal, feed.Torrents[0].Type)
	assert.Equal(t, 7, feed.Torrents[0].ViewID)

	_, err = ParseFeed(SiteFap, strings.NewReader(feedDoc("https://sukebei.nyaa.si/view/7", "3_3", "")))
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = ParseFeed(SiteFun, strings.NewReader(feedDoc("https://nyaa.si/download/7", "1_0", "")))
	assert.True(t, errors.Is(err, ErrStructure))

	_, err = ParseFeed(SiteFun, strings.NewReader(feedDoc("https://nyaa.si/view/-7", "1_0", "")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "bad view id")

	_, err = ParseFeed(SiteFun, strings.NewReader(feedDoc("https://nyaa.si/view/7", "1_0", "<nyaa:seeders>1</nyaa:seeders>")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "nyaa:seeders")

	_, err = ParseFeed(SiteFun, strings.NewReader("not a feed"))
	assert.True(t, errors.Is(err, ErrStructure))
}
