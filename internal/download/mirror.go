// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// onclickHrefPattern extracts the target of the landing page's download
// button, which navigates via an inline handler instead of a link.
var onclickHrefPattern = regexp.MustCompile(`location\.href\s*=\s*'([^']+)'`)

// mirrorDownloader resolves a file through a third-party mirror site in
// two steps: POST the DOI to the site, then pull the real file URL out
// of the returned landing page markup. The site URL comes from the
// descriptor args; without one the downloader never activates.
type mirrorDownloader struct {
	adapter.Base
	site string
}

func newMirror(desc types.Descriptor, env adapter.Env) (Downloader, error) {
	return &mirrorDownloader{
		Base: adapter.Base{Desc: desc, Client: env.Client},
		site: strings.TrimSuffix(desc.Arg("url", ""), "/"),
	}, nil
}

func (m *mirrorDownloader) Decide(d *types.Draft) adapter.Request {
	if m.site == "" || d.DOI == "" {
		return adapter.Request{}
	}
	form := url.Values{"request": {d.DOI}}
	return adapter.Request{
		URL:     m.site + "/",
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    []byte(form.Encode()),
		Enabled: true,
	}
}

func (m *mirrorDownloader) Locate(body []byte, _ *types.Draft) (string, error) {
	if body == nil {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing landing page: %w", err)
	}

	if src, ok := doc.Find("embed#pdf, iframe#pdf").Attr("src"); ok {
		return m.absolute(src), nil
	}

	var loc string
	doc.Find("button[onclick]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		onclick, _ := sel.Attr("onclick")
		if match := onclickHrefPattern.FindStringSubmatch(onclick); match != nil {
			loc = m.absolute(match[1])
			return false
		}
		return true
	})
	return loc, nil
}

// absolute resolves the scheme-relative and site-relative URL forms the
// landing page uses.
func (m *mirrorDownloader) absolute(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return m.site + raw
	default:
		return raw
	}
}
