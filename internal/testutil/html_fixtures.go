package testutil

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// Int64Ptr is a helper for creating *int64 values in tests
func Int64Ptr(v int64) *int64 {
	return &v
}

// GenerateEmptyHTML returns an empty HTML document.
func GenerateEmptyHTML() string {
	return `<html><body></body></html>`
}

// GenerateHTMLWithBody wraps custom body content in a standard HTML shell.
func GenerateHTMLWithBody(bodyHTML string) string {
	return `<html><body>` + bodyHTML + `</body></html>`
}

// OpenSubtitlesFile describes one subtitle file on an opensubtitles.org detail page.
type OpenSubtitlesFile struct {
	FileID string // Used by ToggleMovieFileName; empty omits the toggle link
	Size   string // Rendered as-is so unparsable sizes can be tested
}

// OpenSubtitlesDetailOptions contains options for generating an opensubtitles.org detail page.
type OpenSubtitlesDetailOptions struct {
	SubtitleID string
	Trusted    bool
	Files      []OpenSubtitlesFile
}

// GenerateOpenSubtitlesListingHTML generates a search result page listing the given subtitle ids.
func GenerateOpenSubtitlesListingHTML(subtitleIDs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<body>
<table id="search_results">
	<tbody>
`)
	for i, id := range subtitleIDs {
		fmt.Fprintf(&sb, `		<tr class="change expandable %s" id="name%s">
			<td><strong><a class="bnone" href="/fr/subtitles/%s/release-%d-fr">Release %d</a></strong></td>
			<td><a href="/fr/subtitleserve/sub/%s">Télécharger</a></td>
		</tr>
`, oddEven(i), id, id, i, i, id)
	}
	sb.WriteString(`	</tbody>
</table>
</body>
</html>`)
	return sb.String()
}

// GenerateOpenSubtitlesNoResultHTML generates the warning page opensubtitles.org shows for an empty search.
func GenerateOpenSubtitlesNoResultHTML() string {
	return GenerateHTMLWithBody(`<div class="msg warn"><b>Aucun résultat</b> trouvé.</div>`)
}

// GenerateOpenSubtitlesDetailHTML generates a subtitle detail page.
func GenerateOpenSubtitlesDetailHTML(opts OpenSubtitlesDetailOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<body>
<a id="app_link" href="osdb://subtitle">Open in app</a>
<div class="msg">
	<h1><a href="/fr/subtitleserve/sub/` + opts.SubtitleID + `">Télécharger</a></h1>
</div>
`)
	if opts.Trusted {
		sb.WriteString(`<img src="http://static.opensubtitles.org/gfx/icons/ranks/trusted.png" alt="trusted">
`)
	}
	sb.WriteString(`<div id="sub_subtitle_preview">preview</div>
<div>
`)
	for _, f := range opts.Files {
		fmt.Fprintf(&sb, `	<img src="/gfx/icons/file.gif" alt="srt">
	<a href="#" title="Taille du fichier">%s</a>
`, f.Size)
		if f.FileID != "" {
			fmt.Fprintf(&sb, `	<a href="javascript:void(0)" onclick="ToggleMovieFileName('%s')">+</a>
`, f.FileID)
		}
		sb.WriteString(`	<br>
`)
	}
	sb.WriteString(`	<img style="display:none" src="/gfx/icons/hidden.gif" alt="hidden">
</div>
</body>
</html>`)
	return sb.String()
}

// GenerateOpenSubtitlesFileNamesHTML generates the movie file name fragment of a subtitle file.
func GenerateOpenSubtitlesFileNamesHTML(names ...string) string {
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, `<a href="/fr/search/moviebytesize-%s">%s</a><br>`, url.PathEscape(name), html.EscapeString(name))
	}
	return GenerateHTMLWithBody(sb.String())
}

// PodnapisiDetailOptions contains options for generating a podnapisi.net detail page.
type PodnapisiDetailOptions struct {
	SubtitleID   string
	ReleaseNames []string
}

// GeneratePodnapisiListingHTML generates a search result page linking to the given subtitle ids.
func GeneratePodnapisiListingHTML(subtitleIDs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<body>
<div class="premium_download"><a href="/premium">Premium</a></div>
<table class="list first_column_title">
`)
	for i, id := range subtitleIDs {
		fmt.Fprintf(&sb, `	<tr class="%s">
		<td><a class="subtitle_page_link" href="/fr/ppodnapisi/podnapis/i/%s">Release %d</a></td>
	</tr>
`, oddEven(i), id, i)
	}
	sb.WriteString(`</table>
</body>
</html>`)
	return sb.String()
}

// GeneratePodnapisiNoResultHTML generates a podnapisi.net search page without results.
func GeneratePodnapisiNoResultHTML() string {
	return GenerateHTMLWithBody(`<div class="search_no_results">Aucun sous-titre trouvé</div>`)
}

// GeneratePodnapisiDetailHTML generates a subtitle detail page. podnapisi.net jumps
// straight to it when a search has a single match, so it also carries the
// premium download marker of the result pages.
func GeneratePodnapisiDetailHTML(opts PodnapisiDetailOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<body>
<div class="premium_download"><a href="/premium">Premium</a></div>
<a class="big download button" href="/fr/ppodnapisi/download/i/` + opts.SubtitleID + `">Télécharger</a>
<fieldset class="information parallel">
	<legend>Information</legend>
	<p><span>ID :</span> <span>` + opts.SubtitleID + `</span></p>
	<p><span>FPS :</span> <span>23.976</span></p>
</fieldset>
<fieldset>
	<legend>Releases</legend>
`)
	for _, name := range opts.ReleaseNames {
		fmt.Fprintf(&sb, `	<p><a href="/fr/ppodnapisi/search?sR=%s">%s</a></p>
`, url.QueryEscape(name), html.EscapeString(name))
	}
	sb.WriteString(`</fieldset>
</body>
</html>`)
	return sb.String()
}

// FeliratokRowOptions contains options for generating a subtitle row
type FeliratokRowOptions struct {
	ShowID           int
	Language         string // "Magyar", "Angol", etc.
	FlagImage        string // "hungary.gif", "uk.gif", etc.
	MagyarTitle      string
	EredetiTitle     string
	Uploader         string
	UploaderBold     bool
	UploadDate       string
	DownloadFilename string
	SubtitleID       int
	BackgroundColor  string // Default alternates
}

// FeliratokDetailOptions contains options for generating a feliratok.eu detail sheet.
type FeliratokDetailOptions struct {
	SubtitleID   int
	FileName     string
	Uploader     string
	UploaderBold bool
}

// GenerateFeliratokListingHTML generates a proper HTML table structure for subtitle listings
// based on the real feliratok.eu website structure
func GenerateFeliratokListingHTML(rows []FeliratokRowOptions) string {
	var sb strings.Builder

	sb.WriteString(`<html>
<body>
<table width="100%" align="center" border="0" cellspacing="0" cellpadding="5" class="result">
	<thead>
		<tr height="30">
			<th width="124px" style="text-align: center;">Kategória</th>
			<th width="35px">Nyelv</th>
			<th width="50%">
				<div style="float:left; margin-left:70px;">Magyar cím</div>
				<div style="float:right; margin-right:70px;">Külföldi cím</div>
			</th>
			<th style="text-align: center;">Feltöltő</th>
			<th width="65px" nowrap="">Idő</th>
			<th width="35px">Letöltés</th>
		</tr>
	</thead>
	<tbody>
`)

	for i, row := range rows {
		bgColor := row.BackgroundColor
		if bgColor == "" {
			if i%2 == 0 {
				bgColor = "#ffffff"
			} else {
				bgColor = "#ecf6fc"
			}
		}
		if row.Language == "" {
			row.Language = "Magyar"
		}
		if row.FlagImage == "" {
			switch row.Language {
			case "Magyar":
				row.FlagImage = "hungary.gif"
			case "Angol":
				row.FlagImage = "uk.gif"
			}
		}
		if row.ShowID == 0 {
			row.ShowID = 2967
		}
		if row.SubtitleID == 0 {
			row.SubtitleID = 1737439811 + i
		}

		uploaderTag := row.Uploader
		if row.UploaderBold {
			uploaderTag = fmt.Sprintf("<b>%s</b>", row.Uploader)
		}

		fmt.Fprintf(&sb, `
		<tr id="vilagit" style="background-color: %s;">
			<td align="left">
				<a href="index.php?sid=%d"> <img class="kategk" src="img/sorozat_cat/%d.jpg"></a>
			</td>
			<td align="center" class="lang" onclick="adatlapnyitas('a_%d')">
				<small><img src="img/flags/%s" alt="%s" border="0" width="30" title="%s"></small>
				%s
			</td>
			<td align="left" onclick="adatlapnyitas('a_%d')" style="cursor: pointer;">
				<div class="magyar">%s</div>
				<div class="eredeti">%s</div>
			</td>
			<td align="center" onclick="adatlapnyitas('a_%d')">
				%s
			</td>
			<td align="center" onclick="adatlapnyitas('a_%d')">
				%s
			</td>
			<td align="center">
				<a href="/index.php?action=letolt&amp;fnev=%s&amp;felirat=%d">
				<img src="img/download.png" border="0" alt="Letöltés" width="20"></a>
			</td>
		</tr>

		<tr><td colspan="7" id="adatlap" style="background-color: %s;">
			<div class="0" style="display:none;" id="a_%d"></div>
		</td></tr>`,
			bgColor,
			row.ShowID, row.ShowID,
			row.SubtitleID,
			row.FlagImage, row.Language, row.Language, row.Language,
			row.SubtitleID,
			row.MagyarTitle, row.EredetiTitle,
			row.SubtitleID,
			uploaderTag,
			row.SubtitleID,
			row.UploadDate,
			url.QueryEscape(row.DownloadFilename), row.SubtitleID,
			bgColor,
			row.SubtitleID,
		)
	}

	sb.WriteString(`
	</tbody>
</table>
</body>
</html>`)

	return sb.String()
}

// GenerateFeliratokDetailHTML generates the detail sheet of a single subtitle.
func GenerateFeliratokDetailHTML(opts FeliratokDetailOptions) string {
	uploaderTag := opts.Uploader
	if opts.UploaderBold {
		uploaderTag = fmt.Sprintf("<b>%s</b>", opts.Uploader)
	}

	return fmt.Sprintf(`<html>
<body>
<div class="adatlapTabla">
	<div class="adatlapRow"><span>Nyelv:</span><span>Magyar</span></div>
	<div class="adatlapRow"><span>Fájlnév:</span><span>%s</span></div>
	<div class="adatlapRow"><span>Feltöltő:</span><span>%s</span></div>
	<div class="adatlapRow">
		<a href="/index.php?action=letolt&amp;fnev=%s&amp;felirat=%d">Letöltés</a>
	</div>
</div>
</body>
</html>`,
		html.EscapeString(opts.FileName),
		uploaderTag,
		url.QueryEscape(opts.FileName), opts.SubtitleID,
	)
}

// GenerateFeliratokNoResultHTML generates a feliratok.eu search page without results.
func GenerateFeliratokNoResultHTML() string {
	return GenerateHTMLWithBody(`<table class="result"><thead><tr><th>Kategória</th></tr></thead><tbody></tbody></table>
<div>Nincs találat</div>`)
}

func oddEven(i int) string {
	if i%2 == 0 {
		return "even"
	}
	return "odd"
}
