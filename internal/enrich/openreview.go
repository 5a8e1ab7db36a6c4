// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// openreviewAPIBase is the OpenReview notes endpoint. Declared as a var
// so tests can substitute an httptest server.
var openreviewAPIBase = "https://api.openreview.net/notes/search"

var openreviewYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// openreviewAdapter searches OpenReview submissions by title. Venue
// strings look like "ICLR 2024 poster"; the adapter extracts the year
// and classifies every OpenReview hit as a conference paper.
type openreviewAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newOpenReview(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &openreviewAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (o *openreviewAdapter) Decide(d *types.Draft) adapter.Request {
	if d.Title == "" {
		return adapter.Request{}
	}
	return adapter.Request{
		URL:     openreviewAPIBase + "?content=title&source=forum&term=" + url.QueryEscape(d.Title),
		Enabled: true,
	}
}

// OpenReview API JSON structures.
type openreviewResponse struct {
	Notes []openreviewNote `json:"notes"`
}

type openreviewNote struct {
	Content openreviewContent `json:"content"`
}

type openreviewContent struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Venue   string   `json:"venue"`
	PDF     string   `json:"pdf"`
	Code    string   `json:"code"`
}

func (o *openreviewAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}
	var resp openreviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing OpenReview response: %w", err)
	}

	titles := make([]string, len(resp.Notes))
	for i, n := range resp.Notes {
		titles[i] = n.Content.Title
	}
	best := o.confirm.Best(d.Title, titles)
	if best < 0 {
		return nil
	}

	content := resp.Notes[best].Content
	cand := types.Candidate{
		Title:   content.Title,
		Authors: content.Authors,
	}
	if content.Venue != "" {
		cand.Publication = content.Venue
		cand.PubType = types.PubConference
		if year := openreviewYearPattern.FindString(content.Venue); year != "" {
			cand.PubTime = year
		}
	}
	if content.PDF != "" {
		cand.SupURLs = append(cand.SupURLs, absoluteOpenReviewURL(content.PDF))
	}
	if content.Code != "" {
		cand.Codes = append(cand.Codes, content.Code)
	}

	ap.Apply(d, &cand, o.Priority())
	return nil
}

// absoluteOpenReviewURL resolves the site-relative PDF paths OpenReview
// notes carry ("/pdf/...") against the site origin.
func absoluteOpenReviewURL(p string) string {
	if strings.HasPrefix(p, "/") {
		return "https://openreview.net" + p
	}
	return p
}
