// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// arxivAbsPattern matches an arXiv abstract page URL.
var arxivAbsPattern = regexp.MustCompile(`arxiv\.org/abs/(\d{4}\.\d{4,5})(?:v\d+)?`)

// arxivPDFBase is the arXiv PDF endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// yearPattern pulls a four-digit year out of a date string.
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// webBase carries the pieces the captured-web-page adapters share: the
// network client for page and PDF fetches, and the directory PDFs are
// saved to as an extraction side effect.
type webBase struct {
	client      *httputil.Client
	downloadDir string
	notify      types.Notifier
}

// pageContent returns the captured content when the payload carries it,
// fetching the URL otherwise.
func (w *webBase) pageContent(ctx context.Context, p Payload) ([]byte, error) {
	if len(p.Content) > 0 {
		return p.Content, nil
	}
	return w.client.Get(ctx, p.Value, nil)
}

// fetchPDF downloads pdfURL into the download directory and returns the
// local path. A failed download is reported as a warning and returns ""
// so the draft keeps an empty primary-file field; it never fails the
// extraction.
func (w *webBase) fetchPDF(ctx context.Context, pdfURL, stem string) string {
	if pdfURL == "" {
		return ""
	}
	path, err := downloadFile(ctx, w.client.HTTP(), pdfURL, w.downloadDir, stem)
	if err != nil {
		w.notify.Warn(fmt.Sprintf("pdf download from %s: %v", pdfURL, err))
		return ""
	}
	return path
}

// arxivPageAdapter reads a captured arXiv abstract page.
type arxivPageAdapter struct{ webBase }

func (a *arxivPageAdapter) Name() string { return "arxiv_page" }

func (a *arxivPageAdapter) Validates(p Payload) bool {
	return p.Type == "url" && arxivAbsPattern.MatchString(p.Value)
}

func (a *arxivPageAdapter) Extract(ctx context.Context, p Payload) ([]*types.Draft, error) {
	body, err := a.pageContent(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv page: %w", err)
	}

	d := types.NewDraft()
	d.ArxivID = arxivAbsPattern.FindStringSubmatch(p.Value)[1]
	d.PubType = types.PubOther

	d.Title = strings.TrimSpace(strings.TrimPrefix(
		doc.Find("h1.title").First().Text(), "Title:"))
	doc.Find("div.authors a").Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			d.Authors = append(d.Authors, name)
		}
	})
	if date := doc.Find("div.dateline").Text(); date != "" {
		d.PubTime = yearPattern.FindString(date)
	}

	d.MainURL = a.fetchPDF(ctx, arxivPDFBase+d.ArxivID, d.ArxivID)
	return []*types.Draft{d}, nil
}

// neuripsPageAdapter reads a NeurIPS proceedings paper page. A venue
// page and the generic citation reader may both recognize the same URL;
// the resolver keeps both results.
type neuripsPageAdapter struct{ webBase }

func (a *neuripsPageAdapter) Name() string { return "neurips_page" }

func (a *neuripsPageAdapter) Validates(p Payload) bool {
	return p.Type == "url" &&
		(strings.Contains(p.Value, "papers.nips.cc/paper") ||
			strings.Contains(p.Value, "proceedings.neurips.cc/paper"))
}

func (a *neuripsPageAdapter) Extract(ctx context.Context, p Payload) ([]*types.Draft, error) {
	body, err := a.pageContent(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing proceedings page: %w", err)
	}

	d := types.NewDraft()
	d.Title = strings.TrimSpace(doc.Find("h4").First().Text())
	if d.Title == "" {
		return nil, nil
	}
	d.Publication = "Advances in Neural Information Processing Systems"
	d.PubType = types.PubConference
	d.PubTime = yearPattern.FindString(p.Value)
	if authors := strings.TrimSpace(doc.Find("h4 + p i, p.authors").First().Text()); authors != "" {
		d.SetAuthorString(authors)
	}

	var pdfURL string
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")
		if strings.HasSuffix(href, "Paper.pdf") || strings.HasSuffix(href, "-Paper-Conference.pdf") {
			pdfURL = absoluteURL(p.Value, href)
			return false
		}
		return true
	})
	d.MainURL = a.fetchPDF(ctx, pdfURL, d.ID)
	return []*types.Draft{d}, nil
}

// citationPageAdapter reads the generic citation_* meta tags most
// publisher and repository pages expose (Highwire Press tags).
type citationPageAdapter struct{ webBase }

func (a *citationPageAdapter) Name() string { return "citation_page" }

func (a *citationPageAdapter) Validates(p Payload) bool { return p.Type == "url" }

func (a *citationPageAdapter) Extract(ctx context.Context, p Payload) ([]*types.Draft, error) {
	body, err := a.pageContent(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	meta := func(names ...string) string {
		for _, n := range names {
			v := doc.Find(`meta[name="` + n + `"]`).First().AttrOr("content", "")
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return ""
	}

	d := types.NewDraft()
	d.Title = meta("citation_title")
	if d.Title == "" {
		// Not a citation-tagged page; this payload belongs to the other
		// web adapters.
		return nil, nil
	}

	doc.Find(`meta[name="citation_author"]`).Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.AttrOr("content", "")); name != "" {
			d.Authors = append(d.Authors, name)
		}
	})

	d.DOI = strings.TrimPrefix(meta("citation_doi"), "https://doi.org/")
	d.Volume = meta("citation_volume")
	d.Number = meta("citation_issue")
	d.Publisher = meta("citation_publisher")
	if date := meta("citation_publication_date", "citation_date", "citation_online_date"); date != "" {
		d.PubTime = yearPattern.FindString(date)
	}
	if first, last := meta("citation_firstpage"), meta("citation_lastpage"); first != "" {
		d.Pages = first
		if last != "" {
			d.Pages = first + "-" + last
		}
	}
	if journal := meta("citation_journal_title"); journal != "" {
		d.Publication = journal
		d.PubType = types.PubJournal
	} else if conf := meta("citation_conference_title", "citation_conference"); conf != "" {
		d.Publication = conf
		d.PubType = types.PubConference
	}

	stem := d.DOI
	if stem == "" {
		stem = d.ID
	}
	d.MainURL = a.fetchPDF(ctx, meta("citation_pdf_url"), stem)
	return []*types.Draft{d}, nil
}

// downloadFile streams url into dir/<stem>.pdf via a temp file so a
// partial download never leaves a broken file behind.
func downloadFile(ctx context.Context, client *http.Client, url, dir, stem string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	destPath := filepath.Join(dir, sanitizeStem(stem)+".pdf")
	tmpFile, err := os.CreateTemp(dir, ".paperpipe-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}

// absoluteURL resolves href against the page URL.
func absoluteURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// sanitizeStem makes an identifier filesystem-safe.
func sanitizeStem(s string) string {
	return strings.NewReplacer("/", "-", ":", "-", " ", "_").Replace(s)
}
