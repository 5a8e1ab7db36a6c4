// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// arxivAPIBase is the arXiv metadata endpoint. Declared as a var so
// tests can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivAdapter enriches a draft by its arXiv identifier. An identifier
// lookup targets the exact paper, so no title confirmation is needed.
type arxivAdapter struct {
	adapter.Base
}

func newArxiv(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &arxivAdapter{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (a *arxivAdapter) Decide(d *types.Draft) adapter.Request {
	if d.ArxivID == "" {
		return adapter.Request{}
	}
	return adapter.Request{
		URL:     fmt.Sprintf("%s?id_list=%s", arxivAPIBase, d.ArxivID),
		Enabled: true,
	}
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

func (a *arxivAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return fmt.Errorf("no entry for arXiv ID %s", d.ArxivID)
	}

	// Venue and publication type are left to the indexed sources; the
	// arXiv record only knows it is a preprint.
	entry := feed.Entries[0]
	cand := types.Candidate{
		Title: strings.Join(strings.Fields(entry.Title), " "),
		DOI:   entry.DOI,
	}
	for _, au := range entry.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}
	if len(entry.Published) >= 4 {
		cand.PubTime = entry.Published[:4]
	}
	for _, l := range entry.Links {
		if l.Title == "pdf" && l.Href != "" {
			cand.SupURLs = append(cand.SupURLs, l.Href)
		}
	}

	ap.Apply(d, &cand, a.Priority())
	return nil
}
