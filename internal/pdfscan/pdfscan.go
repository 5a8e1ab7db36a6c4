// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfscan inspects a local PDF for embedded bibliographic
// signals: the document information dictionary, identifier mentions in
// the first-page text layer, link annotations, and a font-size title
// heuristic. It is the cheapest and most trustworthy metadata source,
// so both the entry stage and the enrichment chain use it.
package pdfscan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// doiPattern matches a DOI mentioned in page text or a link target,
// with or without a resolver prefix.
var doiPattern = regexp.MustCompile(`(?:doi\.org/|doi:\s*)(10\.\d{4,9}/[^\s"'<>]+)`)

// arxivPattern matches an arXiv identifier in page text or a link
// target ("arXiv:2301.00001", "arxiv.org/abs/2301.00001v2").
var arxivPattern = regexp.MustCompile(`(?i)arxiv(?::\s*|\.org/(?:abs|pdf)/)(\d{4}\.\d{4,5})(?:v\d+)?`)

// Info holds what a scan recovered. Absent fields are empty.
type Info struct {
	Title   string
	Authors []string
	DOI     string
	ArxivID string
}

// Scan opens the PDF at path and extracts embedded metadata.
func Scan(path string) (*Info, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info := &Info{}
	scanDocInfo(r, info)

	if r.NumPage() >= 1 {
		page := r.Page(1)
		if !page.V.IsNull() {
			texts := page.Content().Text

			if info.Title == "" {
				info.Title = TitleFromFonts(texts)
			}

			scan := flattenText(texts) + "\n" + strings.Join(annotationURIs(page), "\n")
			if m := arxivPattern.FindStringSubmatch(scan); m != nil {
				info.ArxivID = m[1]
			}
			if m := doiPattern.FindStringSubmatch(scan); m != nil {
				info.DOI = strings.TrimRight(m[1], ".,;")
			}
		}
	}

	return info, nil
}

// scanDocInfo copies the document information dictionary into info.
func scanDocInfo(r *pdf.Reader, info *Info) {
	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return
	}
	if t := strings.TrimSpace(dict.Key("Title").Text()); t != "" && !strings.EqualFold(t, "untitled") {
		info.Title = t
	}
	if authors := strings.TrimSpace(dict.Key("Author").Text()); authors != "" {
		authors = strings.ReplaceAll(authors, " and ", ", ")
		for _, part := range strings.Split(authors, ",") {
			if name := strings.TrimSpace(part); name != "" {
				info.Authors = append(info.Authors, name)
			}
		}
	}
}

// TitleFromFonts picks the text run(s) sharing the single largest font
// height on the page. A largest run that is one non-CJK word or begins
// with "arxiv" is usually a running header or the arXiv stamp, so the
// second-largest height is used instead.
func TitleFromFonts(texts []pdf.Text) string {
	byHeight := make(map[float64][]string)
	var order []float64
	var last float64
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if _, ok := byHeight[t.FontSize]; !ok {
			order = append(order, t.FontSize)
		}
		if t.FontSize == last && len(byHeight[t.FontSize]) > 0 {
			n := len(byHeight[t.FontSize])
			byHeight[t.FontSize][n-1] += t.S
		} else {
			byHeight[t.FontSize] = append(byHeight[t.FontSize], t.S)
		}
		last = t.FontSize
	}
	if len(order) == 0 {
		return ""
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(order)))

	title := joinRuns(byHeight[order[0]])
	if rejectTitleRun(title) && len(order) > 1 {
		title = joinRuns(byHeight[order[1]])
	}
	return strings.Join(strings.Fields(title), " ")
}

func joinRuns(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

// rejectTitleRun flags runs that cannot be a title: a lone non-CJK word
// or anything starting with the arXiv stamp text.
func rejectTitleRun(s string) bool {
	if s == "" {
		return true
	}
	if strings.HasPrefix(strings.ToLower(s), "arxiv") {
		return true
	}
	return len(strings.Fields(s)) == 1 && !containsCJK(s)
}

func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// flattenText joins the page's text runs into one string for regex scans.
func flattenText(texts []pdf.Text) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(t.S)
		b.WriteByte(' ')
	}
	return b.String()
}

// annotationURIs collects link targets embedded in the page's annotations.
func annotationURIs(page pdf.Page) []string {
	var uris []string
	annots := page.V.Key("Annots")
	if annots.IsNull() {
		return nil
	}
	for i := 0; i < annots.Len(); i++ {
		uri := annots.Index(i).Key("A").Key("URI")
		if uri.Kind() == pdf.String {
			uris = append(uris, uri.RawString())
		}
	}
	return uris
}
