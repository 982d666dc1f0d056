package nyaa

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchPage(t *testing.T) {
	res, err := ParseSearchPage(SiteFun, openFixture(t, "search.html"))
	require.NoError(t, err)
	require.Len(t, res.Torrents, 3)

	for _, tr := range res.Torrents {
		assert.GreaterOrEqual(t, tr.Seeders, 0)
		assert.GreaterOrEqual(t, tr.Leechers, 0)
		assert.GreaterOrEqual(t, tr.Completed, 0)
		assert.GreaterOrEqual(t, tr.TotalComments, 0)
	}

	first := res.Torrents[0]
	assert.Equal(t, SearchResultTorrent{
		Type:            TypeNormal,
		ViewID:          1700001,
		Name:            "[Group] Show - 01 [1080p].mkv",
		Category:        FunAnimeEnglishTranslated,
		CategoryIconURL: "https://nyaa.si/static/img/icons/nyaa/1_2.png",
		TorrentURL:      "https://nyaa.si/download/1700001.torrent",
		MagnetLink:      "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&dn=%5BGroup%5D+Show+-+01",
		Size:            "1.4 GiB",
		Timestamp:       epoch(1700000000),
		Seeders:         120,
		Leechers:        8,
		Completed:       3402,
		TotalComments:   4,
	}, first)

	second := res.Torrents[1]
	assert.Equal(t, TypeTrusted, second.Type)
	assert.Equal(t, "[Trusted] A Very Long Show Name That The Listing Truncates - 02 [1080p].mkv", second.Name)
	assert.Equal(t, 0, second.TotalComments)

	third := res.Torrents[2]
	assert.Equal(t, TypeRemake, third.Type)
	assert.Equal(t, FunAnimeRaw, third.Category)
	assert.Equal(t, 1, third.TotalComments)

	assert.Equal(t, 76, res.DisplayingFrom)
	assert.Equal(t, 150, res.DisplayingTo)
	assert.Equal(t, 300, res.TotalResults)
	assert.Equal(t, intPtr(2), res.CurrentPage)
	assert.Equal(t, intPtr(1), res.PreviousPage)
	assert.Equal(t, intPtr(3), res.NextPage)
	assert.Equal(t, intPtr(4), res.AvailablePages)
}

func TestParseSearchPage_SinglePage(t *testing.T) {
	res, err := ParseSearchPage(SiteFap, openFixture(t, "search_single.html"))
	require.NoError(t, err)
	require.Len(t, res.Torrents, 1)

	assert.Equal(t, FapArt, res.Torrents[0].Category)
	assert.Equal(t, "https://sukebei.nyaa.si/download/4000001.torrent", res.Torrents[0].TorrentURL)
	assert.Equal(t, Pagination{
		DisplayingFrom: 1,
		DisplayingTo:   1,
		TotalResults:   1,
		CurrentPage:    intPtr(1),
		AvailablePages: intPtr(1),
	}, res.Pagination)
}

func TestParseSearchPage_Empty(t *testing.T) {
	res, err := ParseSearchPage(SiteFun, openFixture(t, "search_empty.html"))
	require.NoError(t, err)
	assert.Empty(t, res.Torrents)
	assert.Equal(t, Pagination{}, res.Pagination)
}

func listingPage(caption, widget string) string {
	return `<html><body><div class="center">` +
		`<div class="pagination-page-info">` + caption + `</div>` +
		`<nav><ul class="pagination">` + widget + `</ul></nav></div></body></html>`
}

func TestResolvePagination_CaptionAndActivePage(t *testing.T) {
	doc := parseHTML(t, listingPage(
		"Displaying results 1-75 out of 150 results.",
		`<li class="previous"><a rel="prev" href="/?q=show">&laquo;</a></li>`+
			`<li><a href="/?q=show">1</a></li>`+
			`<li class="active"><a href="#">2 <span class="sr-only">(current)</span></a></li>`+
			`<li class="next disabled"><a>&raquo;</a></li>`,
	))

	p, err := ResolvePagination(doc, 75)
	require.NoError(t, err)
	assert.Equal(t, 1, p.DisplayingFrom)
	assert.Equal(t, 75, p.DisplayingTo)
	assert.Equal(t, 150, p.TotalResults)
	assert.Equal(t, intPtr(2), p.CurrentPage)
	assert.Equal(t, intPtr(1), p.PreviousPage)
	assert.Nil(t, p.NextPage)
	assert.Equal(t, intPtr(2), p.AvailablePages)
}

func TestResolvePagination_DisabledPrevious(t *testing.T) {
	doc := parseHTML(t, listingPage(
		"Displaying results 1-75 out of 150 results.",
		`<li class="previous disabled unavailable"><a>&laquo;</a></li>`+
			`<li class="active"><a href="#">1 <span class="sr-only">(current)</span></a></li>`+
			`<li><a href="/?q=show&amp;p=2">2</a></li>`+
			`<li class="next"><a rel="next" href="/?q=show&amp;p=2">&raquo;</a></li>`,
	))

	p, err := ResolvePagination(doc, 75)
	require.NoError(t, err)
	assert.Nil(t, p.PreviousPage)
	assert.Equal(t, intPtr(1), p.CurrentPage)
	assert.Equal(t, intPtr(2), p.NextPage)
	assert.Equal(t, intPtr(2), p.AvailablePages)
}

func TestResolvePagination_DisabledControlsWithRel(t *testing.T) {
	doc := parseHTML(t, listingPage(
		"Displaying results 1-75 out of 75 results.",
		`<li class="previous disabled"><a rel="prev" href="#">&laquo;</a></li>`+
			`<li class="active"><a href="#">1 <span class="sr-only">(current)</span></a></li>`+
			`<li class="next unavailable"><a rel="next" href="#">&raquo;</a></li>`,
	))

	p, err := ResolvePagination(doc, 75)
	require.NoError(t, err)
	assert.Nil(t, p.PreviousPage)
	assert.Nil(t, p.NextPage)
	assert.Equal(t, intPtr(1), p.CurrentPage)
	assert.Equal(t, intPtr(1), p.AvailablePages)
}

func TestResolvePagination_NoWidget(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>nothing</p></body></html>`)

	p, err := ResolvePagination(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, intPtr(1), p.CurrentPage)
	assert.Equal(t, intPtr(1), p.AvailablePages)
	assert.Nil(t, p.PreviousPage)
	assert.Nil(t, p.NextPage)

	p, err = ResolvePagination(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, Pagination{}, p)
}

func TestResolvePagination_Malformed(t *testing.T) {
	cases := map[string]string{
		"caption": listingPage("Showing everything", `<li><a>1</a></li><li><a>2</a></li>`),
		"range":   listingPage("Displaying results 80-75 out of 150 results.", `<li><a>1</a></li><li><a>2</a></li>`),
		"next without page": listingPage("Displaying results 1-75 out of 150 results.",
			`<li class="active"><a>1</a></li><li><a href="/?p=2">2</a></li><li class="next"><a rel="next" href="/?q=x">&raquo;</a></li>`),
		"too few items": listingPage("Displaying results 1-75 out of 150 results.", `<li class="active"><a>1</a></li>`),
	}
	for name, html := range cases {
		_, err := ResolvePagination(parseHTML(t, html), 1)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrStructure), name)
	}
}

const rowTemplate = `<html><body><table class="torrent-list"><tbody>
<tr class="%CLASS%">
	<td><a href="/?c=%CAT%"><img src="/static/img/icons/nyaa/1_2.png" class="category-icon"></a></td>
	<td colspan="2"><a href="/view/42" title="Name">Name</a></td>
	%CELLS%
</tr>
</tbody></table></body></html>`

const fullCells = `<td class="text-center"><a href="/download/42.torrent"></a><a href="magnet:?xt=urn:btih:x"></a></td>
	<td class="text-center">1 GiB</td>
	<td class="text-center" data-timestamp="1700000000"></td>
	<td class="text-center">1</td>
	<td class="text-center">2</td>
	<td class="text-center">3</td>`

func row(class, cat, cells string) string {
	return strings.NewReplacer("%CLASS%", class, "%CAT%", cat, "%CELLS%", cells).Replace(rowTemplate)
}

func TestAssembleSearchPage_RowErrors(t *testing.T) {
	_, err := AssembleSearchPage(SiteFun, parseHTML(t, row("default", "1_2", fullCells)))
	require.NoError(t, err)

	_, err = AssembleSearchPage(SiteFun, parseHTML(t, row("mystery", "1_2", fullCells)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownValue))
	assert.False(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "row 1")

	_, err = AssembleSearchPage(SiteFap, parseHTML(t, row("default", "5_1", fullCells)))
	assert.True(t, errors.Is(err, ErrUnknownValue))

	missing := strings.Replace(fullCells, `<td class="text-center">3</td>`, "", 1)
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, row("default", "1_2", missing)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "centered cells")

	inserted := strings.Replace(fullCells, `<td class="text-center">1</td>`,
		`<td class="text-center">7</td><td class="text-center">1</td>`, 1)
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, row("default", "1_2", inserted)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "got 7")

	trailing := fullCells + `<td class="text-center">4</td>`
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, row("default", "1_2", trailing)))
	assert.True(t, errors.Is(err, ErrStructure))

	badID := strings.Replace(row("default", "1_2", fullCells), `href="/view/42"`, `href="/view/-42"`, 1)
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, badID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "bad view link")

	negative := strings.Replace(fullCells, `<td class="text-center">2</td>`, `<td class="text-center">-2</td>`, 1)
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, row("default", "1_2", negative)))
	assert.True(t, errors.Is(err, ErrStructure))

	noCategory := strings.Replace(row("default", "1_2", fullCells), `href="/?c=1_2"`, `href="/"`, 1)
	_, err = AssembleSearchPage(SiteFun, parseHTML(t, noCategory))
	assert.True(t, errors.Is(err, ErrStructure))
}
