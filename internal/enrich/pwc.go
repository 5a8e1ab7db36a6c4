// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// pwcAPIBase is the Papers With Code papers endpoint. Declared as a var
// so tests can substitute an httptest server.
var pwcAPIBase = "https://paperswithcode.com/api/v1/papers"

// pwcAdapter attaches code-repository links from Papers With Code. It
// resolves the paper by arXiv identifier when possible, by confirmed
// title search otherwise, then fetches the paper's repository list. The
// repository lookup is a second request, so this adapter overrides the
// default fetch.
type pwcAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newPWC(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &pwcAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (p *pwcAdapter) Decide(d *types.Draft) adapter.Request {
	switch {
	case d.ArxivID != "":
		return adapter.Request{URL: pwcAPIBase + "/?arxiv_id=" + url.QueryEscape(d.ArxivID), Enabled: true}
	case d.Title != "":
		return adapter.Request{URL: pwcAPIBase + "/?title=" + url.QueryEscape(d.Title), Enabled: true}
	default:
		return adapter.Request{}
	}
}

// Papers With Code API JSON structures.
type pwcPaperList struct {
	Results []pwcPaper `json:"results"`
}

type pwcPaper struct {
	ID      string `json:"id"`
	ArxivID string `json:"arxiv_id"`
	Title   string `json:"title"`
	URLPdf  string `json:"url_pdf"`
}

type pwcRepoList struct {
	Results []pwcRepo `json:"results"`
}

type pwcRepo struct {
	URL        string `json:"url"`
	IsOfficial bool   `json:"is_official"`
}

// Fetch resolves the paper and retrieves its repository list. Matching
// happens here rather than in Parse because the repository request needs
// the resolved paper ID.
func (p *pwcAdapter) Fetch(ctx context.Context, req adapter.Request) ([]byte, error) {
	if !req.Enabled {
		return nil, nil
	}
	body, err := p.Client.Get(ctx, req.URL, req.Headers)
	if err != nil {
		return nil, err
	}

	var list pwcPaperList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing paper search: %w", err)
	}
	paper := p.pick(list.Results, req)
	if paper == nil {
		return nil, nil
	}

	return p.Client.Get(ctx, fmt.Sprintf("%s/%s/repositories/", pwcAPIBase, url.PathEscape(paper.ID)), nil)
}

// pick selects the search hit to trust. An arXiv query is an exact
// lookup; a title query requires fuzzy confirmation against the query.
func (p *pwcAdapter) pick(results []pwcPaper, req adapter.Request) *pwcPaper {
	if len(results) == 0 {
		return nil
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil
	}
	if u.Query().Get("arxiv_id") != "" {
		return &results[0]
	}
	want := u.Query().Get("title")
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Title
	}
	if best := p.confirm.Best(want, titles); best >= 0 {
		return &results[best]
	}
	return nil
}

func (p *pwcAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}
	var repos pwcRepoList
	if err := json.Unmarshal(body, &repos); err != nil {
		return fmt.Errorf("parsing repository list: %w", err)
	}

	cand := types.Candidate{}
	for _, r := range repos.Results {
		if r.URL == "" {
			continue
		}
		// Official implementations first.
		if r.IsOfficial {
			cand.Codes = append([]string{r.URL}, cand.Codes...)
		} else {
			cand.Codes = append(cand.Codes, r.URL)
		}
	}
	if len(cand.Codes) == 0 {
		return nil
	}

	ap.Apply(d, &cand, p.Priority())
	return nil
}
