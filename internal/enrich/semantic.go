// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph endpoint. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,externalIds,venue,year,authors,publicationTypes,openAccessPdf"

// semanticAdapter resolves a paper through the Semantic Scholar graph:
// by DOI or arXiv identifier when the draft has one, by title search
// with fuzzy confirmation otherwise. An open-access PDF link, when
// present, joins the supplementary URLs.
type semanticAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newSemantic(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &semanticAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (s *semanticAdapter) Decide(d *types.Draft) adapter.Request {
	switch {
	case d.DOI != "":
		return adapter.Request{
			URL:     fmt.Sprintf("%s/DOI:%s?fields=%s", semanticAPIBase, url.PathEscape(d.DOI), semanticFields),
			Enabled: true,
		}
	case d.ArxivID != "":
		return adapter.Request{
			URL:     fmt.Sprintf("%s/arXiv:%s?fields=%s", semanticAPIBase, d.ArxivID, semanticFields),
			Enabled: true,
		}
	case d.Title != "":
		return adapter.Request{
			URL: fmt.Sprintf("%s/search?limit=5&fields=%s&query=%s",
				semanticAPIBase, semanticFields, url.QueryEscape(d.Title)),
			Enabled: true,
		}
	default:
		return adapter.Request{}
	}
}

// Semantic Scholar graph API JSON structures.
type semanticPaper struct {
	Title            string            `json:"title"`
	Venue            string            `json:"venue"`
	Year             int               `json:"year"`
	PublicationTypes []string          `json:"publicationTypes"`
	ExternalIds      map[string]string `json:"externalIds"`
	Authors          []semanticAuthor  `json:"authors"`
	OpenAccessPdf    *semanticPDF      `json:"openAccessPdf"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticPDF struct {
	URL string `json:"url"`
}

type semanticSearch struct {
	Data []semanticPaper `json:"data"`
}

func (s *semanticAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}

	var paper *semanticPaper
	if d.DOI == "" && d.ArxivID == "" {
		var search semanticSearch
		if err := json.Unmarshal(body, &search); err != nil {
			return fmt.Errorf("parsing Semantic Scholar search: %w", err)
		}
		titles := make([]string, len(search.Data))
		for i, p := range search.Data {
			titles[i] = p.Title
		}
		best := s.confirm.Best(d.Title, titles)
		if best < 0 {
			return nil
		}
		paper = &search.Data[best]
	} else {
		var p semanticPaper
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("parsing Semantic Scholar paper: %w", err)
		}
		paper = &p
	}

	cand := types.Candidate{
		Title:       paper.Title,
		Publication: paper.Venue,
		DOI:         paper.ExternalIds["DOI"],
		ArxivID:     paper.ExternalIds["ArXiv"],
		PubType:     semanticPubType(paper.PublicationTypes),
	}
	if paper.Year > 0 {
		cand.PubTime = strconv.Itoa(paper.Year)
	}
	for _, au := range paper.Authors {
		if au.Name != "" {
			cand.Authors = append(cand.Authors, au.Name)
		}
	}
	if paper.OpenAccessPdf != nil && paper.OpenAccessPdf.URL != "" {
		cand.SupURLs = append(cand.SupURLs, paper.OpenAccessPdf.URL)
	}

	ap.Apply(d, &cand, s.Priority())
	return nil
}

func semanticPubType(kinds []string) types.PubType {
	for _, k := range kinds {
		switch k {
		case "JournalArticle":
			return types.PubJournal
		case "Conference":
			return types.PubConference
		case "Book":
			return types.PubBook
		}
	}
	if len(kinds) > 0 {
		return types.PubOther
	}
	return ""
}
