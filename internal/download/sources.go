// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Base URLs for file resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase    = "https://arxiv.org/pdf/"
	openAlexAPIBase = "https://api.openalex.org/works/"
	semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"
)

// arxivDownloader builds the arXiv PDF URL directly from the draft's
// identifier. The endpoint is deterministic, so there is no probe
// request; a wrong identifier surfaces when the file service fetches.
type arxivDownloader struct {
	adapter.Base
}

func newArxiv(desc types.Descriptor, env adapter.Env) (Downloader, error) {
	return &arxivDownloader{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (a *arxivDownloader) Decide(d *types.Draft) adapter.Request {
	if d.ArxivID == "" {
		return adapter.Request{}
	}
	return adapter.Request{URL: arxivPDFBase + d.ArxivID, Enabled: true}
}

// Fetch is a no-op; Locate answers from the request alone.
func (a *arxivDownloader) Fetch(_ context.Context, _ adapter.Request) ([]byte, error) {
	return nil, nil
}

func (a *arxivDownloader) Locate(_ []byte, d *types.Draft) (string, error) {
	return arxivPDFBase + d.ArxivID, nil
}

// openAlexDownloader asks OpenAlex for the best open-access location of
// a DOI. The "mailto" parameter routes the request into the polite pool.
type openAlexDownloader struct {
	adapter.Base
}

func newOpenAlex(desc types.Descriptor, env adapter.Env) (Downloader, error) {
	return &openAlexDownloader{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (o *openAlexDownloader) Decide(d *types.Draft) adapter.Request {
	if d.DOI == "" {
		return adapter.Request{}
	}
	apiURL := openAlexAPIBase + "https://doi.org/" + d.DOI
	if mailto := o.Desc.Arg("mailto", ""); mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(mailto)
	}
	return adapter.Request{URL: apiURL, Enabled: true}
}

type openAlexResponse struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

func (o *openAlexDownloader) Locate(body []byte, _ *types.Draft) (string, error) {
	if body == nil {
		return "", nil
	}
	var oa openAlexResponse
	if err := json.Unmarshal(body, &oa); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if oa.BestOALocation == nil {
		return "", nil
	}
	return oa.BestOALocation.PDFURL, nil
}

// semanticDownloader asks the Semantic Scholar graph for an open-access
// PDF by DOI or arXiv identifier.
type semanticDownloader struct {
	adapter.Base
}

func newSemantic(desc types.Descriptor, env adapter.Env) (Downloader, error) {
	return &semanticDownloader{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (s *semanticDownloader) Decide(d *types.Draft) adapter.Request {
	var id string
	switch {
	case d.DOI != "":
		id = "DOI:" + url.PathEscape(d.DOI)
	case d.ArxivID != "":
		id = "arXiv:" + d.ArxivID
	default:
		return adapter.Request{}
	}
	req := adapter.Request{
		URL:     fmt.Sprintf("%s/%s?fields=openAccessPdf", semanticAPIBase, id),
		Enabled: true,
	}
	if key := s.Desc.Arg("api_key", ""); key != "" {
		req.Headers = map[string]string{"x-api-key": key}
	}
	return req
}

type semanticOAResponse struct {
	OpenAccessPdf *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

func (s *semanticDownloader) Locate(body []byte, _ *types.Draft) (string, error) {
	if body == nil {
		return "", nil
	}
	var resp semanticOAResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	if resp.OpenAccessPdf == nil {
		return "", nil
	}
	return resp.OpenAccessPdf.URL, nil
}
