package nyaa

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Category is a node of one site's category taxonomy. The two sites use
// distinct types, so a FunCategory never compares equal to a FapCategory
// even when their codes match.
type Category interface {
	Site() Site
	Code() string
	Title() string
	category()
}

// FunCategory is a category of SiteFun.
type FunCategory string

const (
	FunAllCategories FunCategory = "0_0"

	FunAnime                     FunCategory = "1_0"
	FunAnimeMusicVideo           FunCategory = "1_1"
	FunAnimeEnglishTranslated    FunCategory = "1_2"
	FunAnimeNonEnglishTranslated FunCategory = "1_3"
	FunAnimeRaw                  FunCategory = "1_4"

	FunAudio         FunCategory = "2_0"
	FunAudioLossless FunCategory = "2_1"
	FunAudioLossy    FunCategory = "2_2"

	FunLiterature                     FunCategory = "3_0"
	FunLiteratureEnglishTranslated    FunCategory = "3_1"
	FunLiteratureNonEnglishTranslated FunCategory = "3_2"
	FunLiteratureRaw                  FunCategory = "3_3"

	FunLiveAction                     FunCategory = "4_0"
	FunLiveActionEnglishTranslated    FunCategory = "4_1"
	FunLiveActionIdolPromotionalVideo FunCategory = "4_2"
	FunLiveActionNonEnglishTranslated FunCategory = "4_3"
	FunLiveActionRaw                  FunCategory = "4_4"

	FunPictures         FunCategory = "5_0"
	FunPicturesGraphics FunCategory = "5_1"
	FunPicturesPhotos   FunCategory = "5_2"

	FunSoftware             FunCategory = "6_0"
	FunSoftwareApplications FunCategory = "6_1"
	FunSoftwareGames        FunCategory = "6_2"
)

// FapCategory is a category of SiteFap.
type FapCategory string

const (
	FapAllCategories FapCategory = "0_0"

	FapArt          FapCategory = "1_0"
	FapArtAnime     FapCategory = "1_1"
	FapArtDoujinshi FapCategory = "1_2"
	FapArtGames     FapCategory = "1_3"
	FapArtManga     FapCategory = "1_4"
	FapArtPictures  FapCategory = "1_5"

	FapRealLife                      FapCategory = "2_0"
	FapRealLifePhotobooksAndPictures FapCategory = "2_1"
	FapRealLifeVideos                FapCategory = "2_2"
)

var categoryCodes = map[Site]map[string]Category{
	SiteFun: {
		"0_0": FunAllCategories,

		"1_0": FunAnime,
		"1_1": FunAnimeMusicVideo,
		"1_2": FunAnimeEnglishTranslated,
		"1_3": FunAnimeNonEnglishTranslated,
		"1_4": FunAnimeRaw,

		"2_0": FunAudio,
		"2_1": FunAudioLossless,
		"2_2": FunAudioLossy,

		"3_0": FunLiterature,
		"3_1": FunLiteratureEnglishTranslated,
		"3_2": FunLiteratureNonEnglishTranslated,
		"3_3": FunLiteratureRaw,

		"4_0": FunLiveAction,
		"4_1": FunLiveActionEnglishTranslated,
		"4_2": FunLiveActionIdolPromotionalVideo,
		"4_3": FunLiveActionNonEnglishTranslated,
		"4_4": FunLiveActionRaw,

		"5_0": FunPictures,
		"5_1": FunPicturesGraphics,
		"5_2": FunPicturesPhotos,

		"6_0": FunSoftware,
		"6_1": FunSoftwareApplications,
		"6_2": FunSoftwareGames,
	},
	SiteFap: {
		"0_0": FapAllCategories,

		"1_0": FapArt,
		"1_1": FapArtAnime,
		"1_2": FapArtDoujinshi,
		"1_3": FapArtGames,
		"1_4": FapArtManga,
		"1_5": FapArtPictures,

		"2_0": FapRealLife,
		"2_1": FapRealLifePhotobooksAndPictures,
		"2_2": FapRealLifeVideos,
	},
}

var categoryTitles = map[Site]map[string]string{
	SiteFun: {
		"0_0": "All Categories",

		"1_0": "Anime",
		"1_1": "Anime - Anime Music Video",
		"1_2": "Anime - English-Translated",
		"1_3": "Anime - Non-English-Translated",
		"1_4": "Anime - Raw",

		"2_0": "Audio",
		"2_1": "Audio - Lossless",
		"2_2": "Audio - Lossy",

		"3_0": "Literature",
		"3_1": "Literature - English-Translated",
		"3_2": "Literature - Non-English-Translated",
		"3_3": "Literature - Raw",

		"4_0": "Live Action",
		"4_1": "Live Action - English-Translated",
		"4_2": "Live Action - Idol/Promotional Video",
		"4_3": "Live Action - Non-English-Translated",
		"4_4": "Live Action - Raw",

		"5_0": "Pictures",
		"5_1": "Pictures - Graphics",
		"5_2": "Pictures - Photos",

		"6_0": "Software",
		"6_1": "Software - Applications",
		"6_2": "Software - Games",
	},
	SiteFap: {
		"0_0": "All Categories",

		"1_0": "Art",
		"1_1": "Art - Anime",
		"1_2": "Art - Doujinshi",
		"1_3": "Art - Games",
		"1_4": "Art - Manga",
		"1_5": "Art - Pictures",

		"2_0": "Real Life",
		"2_1": "Real Life - Photobooks And Pictures",
		"2_2": "Real Life - Videos",
	},
}

// ResolveCategory maps a "major_minor" code to the site's category.
func ResolveCategory(site Site, code string) (Category, error) {
	codes, ok := categoryCodes[site]
	if !ok {
		return nil, &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	c, ok := codes[code]
	if !ok {
		return nil, &UnknownValueError{Kind: KindCategory, Value: code, Site: site}
	}
	return c, nil
}

// CategoryTitle returns the human-readable title of a site's category code.
func CategoryTitle(site Site, code string) (string, error) {
	titles, ok := categoryTitles[site]
	if !ok {
		return "", &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	title, ok := titles[code]
	if !ok {
		return "", &UnknownValueError{Kind: KindCategory, Value: code, Site: site}
	}
	return title, nil
}

// AllCategories returns the site's "all categories" node (code 0_0).
func AllCategories(site Site) (Category, error) {
	return ResolveCategory(site, "0_0")
}

// Categories lists a site's categories ordered by major then minor code.
func Categories(site Site) ([]Category, error) {
	codes, ok := categoryCodes[site]
	if !ok {
		return nil, &UnknownValueError{Kind: KindSite, Value: site.String()}
	}
	out := make([]Category, 0, len(codes))
	for _, c := range codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, ni := splitCode(out[i].Code())
		mj, nj := splitCode(out[j].Code())
		if mi != mj {
			return mi < mj
		}
		return ni < nj
	})
	return out, nil
}

func splitCode(code string) (major, minor int) {
	a, b, _ := strings.Cut(code, "_")
	major, _ = strconv.Atoi(a)
	minor, _ = strconv.Atoi(b)
	return major, minor
}

func (c FunCategory) Site() Site { return SiteFun }
func (c FunCategory) Code() string { return string(c) }
func (c FunCategory) Title() string { return titleOrCode(SiteFun, string(c)) }
func (c FunCategory) String() string { return c.Title() }
func (FunCategory) category() {}

func (c FapCategory) Site() Site { return SiteFap }
func (c FapCategory) Code() string { return string(c) }
func (c FapCategory) Title() string { return titleOrCode(SiteFap, string(c)) }
func (c FapCategory) String() string { return c.Title() }
func (FapCategory) category() {}

func titleOrCode(site Site, code string) string {
	if title, err := CategoryTitle(site, code); err == nil {
		return title
	}
	return code
}

// categoryView is the serialized form of a category: always site-qualified.
type categoryView struct {
	Site  Site   `json:"site" yaml:"site"`
	Code  string `json:"code" yaml:"code"`
	Title string `json:"title" yaml:"title"`
}

func viewOf(c Category) categoryView {
	return categoryView{Site: c.Site(), Code: c.Code(), Title: c.Title()}
}

func (c FunCategory) MarshalJSON() ([]byte, error) { return json.Marshal(viewOf(c)) }
func (c FapCategory) MarshalJSON() ([]byte, error) { return json.Marshal(viewOf(c)) }
func (c FunCategory) MarshalYAML() (any, error) { return viewOf(c), nil }
func (c FapCategory) MarshalYAML() (any, error) { return viewOf(c), nil }
