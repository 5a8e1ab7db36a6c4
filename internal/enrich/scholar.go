// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// scholarBase is the Google Scholar search page. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

var scholarYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// scholarAdapter scrapes the Google Scholar result page. Scholar has no
// API, aggressively rate-limits, and answers scrapers with robot checks,
// so this adapter ships disabled; enabling it without a bypass
// collaborator will mostly produce warnings.
type scholarAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newScholar(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &scholarAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (s *scholarAdapter) Decide(d *types.Draft) adapter.Request {
	if d.Title == "" {
		return adapter.Request{}
	}
	return adapter.Request{URL: scholarBase + "?hl=en&q=" + url.QueryEscape(d.Title), Enabled: true}
}

func (s *scholarAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing result page: %w", err)
	}

	var cand *types.Candidate
	doc.Find(".gs_ri").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := cleanScholarTitle(sel.Find(".gs_rt").Text())
		if !s.confirm.Confirm(title, d.Title) {
			return true
		}
		cand = &types.Candidate{Title: title}
		fillFromByline(cand, sel.Find(".gs_a").Text())
		return false
	})
	if cand == nil {
		return nil
	}

	ap.Apply(d, cand, s.Priority())
	return nil
}

// cleanScholarTitle drops the access-type prefix Scholar prepends to
// result titles ("[PDF]", "[HTML]", "[BOOK]").
func cleanScholarTitle(t string) string {
	t = strings.TrimSpace(t)
	for strings.HasPrefix(t, "[") {
		end := strings.Index(t, "]")
		if end < 0 {
			break
		}
		t = strings.TrimSpace(t[end+1:])
	}
	return t
}

// fillFromByline parses the green byline under a result: authors, then
// venue and year, then host, separated by " - ".
func fillFromByline(cand *types.Candidate, byline string) {
	parts := strings.Split(byline, " - ")
	if len(parts) == 0 {
		return
	}
	for _, name := range strings.Split(parts[0], ",") {
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "…"))
		if name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}
	if len(parts) < 2 {
		return
	}
	venue := strings.TrimSpace(parts[1])
	if year := scholarYearPattern.FindString(venue); year != "" {
		cand.PubTime = year
		venue = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.Replace(venue, year, "", 1)), ","))
	}
	cand.Publication = venue
}
