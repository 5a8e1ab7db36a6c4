// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// DBLP endpoints. Declared as vars so tests can substitute httptest servers.
var (
	dblpPublAPIBase  = "https://dblp.org/search/publ/api"
	dblpVenueAPIBase = "https://dblp.org/search/venue/api"
)

// dblpAdapter searches the DBLP bibliography by title. DBLP records
// carry the venue acronym; the venue lookup adapter later expands it to
// the full name.
type dblpAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newDBLP(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &dblpAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (a *dblpAdapter) Decide(d *types.Draft) adapter.Request {
	if d.Title == "" {
		return adapter.Request{}
	}
	return adapter.Request{URL: dblpSearchURL(d.Title), Enabled: true}
}

func (a *dblpAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	return dblpParse(body, d, ap, a.confirm, a.Priority())
}

// dblpYearAdapter is the disambiguation variant: it appends the draft's
// publication year, shifted by the "offset" argument, to the search
// query. DBLP indexes the camera-ready year, which for many venues
// trails the preprint year the draft starts with.
type dblpYearAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newDBLPYear(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &dblpYearAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (a *dblpYearAdapter) Decide(d *types.Draft) adapter.Request {
	if d.Title == "" || d.PubTime == "" {
		return adapter.Request{}
	}
	year, err := strconv.Atoi(d.PubTime)
	if err != nil {
		return adapter.Request{}
	}
	offset, err := strconv.Atoi(a.Desc.Arg("offset", "1"))
	if err != nil {
		offset = 1
	}
	query := fmt.Sprintf("%s %d", d.Title, year+offset)
	return adapter.Request{URL: dblpSearchURL(query), Enabled: true}
}

func (a *dblpYearAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	return dblpParse(body, d, ap, a.confirm, a.Priority())
}

// dblpVenueAdapter expands the short venue key recorded by the search
// adapters into the full venue name. It runs after them at equal
// priority, so the expansion is allowed to overwrite the key.
type dblpVenueAdapter struct {
	adapter.Base
}

func newDBLPVenue(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &dblpVenueAdapter{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (a *dblpVenueAdapter) Decide(d *types.Draft) adapter.Request {
	// Multi-word venues are already full names, not DBLP keys.
	if d.Publication == "" || strings.Contains(d.Publication, " ") {
		return adapter.Request{}
	}
	return adapter.Request{
		URL:     dblpVenueAPIBase + "?format=json&h=1&q=" + url.QueryEscape(d.Publication),
		Enabled: true,
	}
}

func (a *dblpVenueAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}
	var resp dblpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing DBLP venue response: %w", err)
	}
	hits := resp.Result.Hits.Hit
	if len(hits) == 0 || hits[0].Info.Venue == "" {
		return nil
	}
	ap.Apply(d, &types.Candidate{Publication: hits[0].Info.Venue}, a.Priority())
	return nil
}

func dblpSearchURL(query string) string {
	return dblpPublAPIBase + "?format=json&h=5&q=" + url.QueryEscape(query)
}

// DBLP search API JSON structures.
type dblpResponse struct {
	Result struct {
		Hits struct {
			Hit []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpHit struct {
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Title   string      `json:"title"`
	Venue   string      `json:"venue"`
	Year    string      `json:"year"`
	Type    string      `json:"type"`
	DOI     string      `json:"doi"`
	Pages   string      `json:"pages"`
	Volume  string      `json:"volume"`
	Number  string      `json:"number"`
	Authors dblpAuthors `json:"authors"`
}

type dblpAuthors struct {
	Author []dblpAuthor `json:"author"`
}

type dblpAuthor struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts both shapes DBLP emits: an object for a single
// author and an array otherwise.
func (a *dblpAuthors) UnmarshalJSON(data []byte) error {
	type plain dblpAuthors
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*a = dblpAuthors(p)
		return nil
	}
	var single struct {
		Author dblpAuthor `json:"author"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	a.Author = []dblpAuthor{single.Author}
	return nil
}

// dblpParse confirms the best search hit against the draft title and
// applies its fields.
func dblpParse(body []byte, d *types.Draft, ap *adapter.Applier, confirm match.Confirmer, priority int) error {
	if body == nil {
		return nil
	}
	var resp dblpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing DBLP response: %w", err)
	}

	hits := resp.Result.Hits.Hit
	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.Info.Title
	}
	best := confirm.Best(d.Title, titles)
	if best < 0 {
		return nil
	}

	info := hits[best].Info
	cand := types.Candidate{
		Title:       strings.TrimSuffix(info.Title, "."),
		Publication: info.Venue,
		PubTime:     info.Year,
		PubType:     dblpPubType(info.Type),
		DOI:         info.DOI,
		Pages:       info.Pages,
		Volume:      info.Volume,
		Number:      info.Number,
	}
	for _, au := range info.Authors.Author {
		if name := dropNameSuffix(au.Text); name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}

	ap.Apply(d, &cand, priority)
	return nil
}

func dblpPubType(t string) types.PubType {
	switch t {
	case "Journal Articles":
		return types.PubJournal
	case "Conference and Workshop Papers":
		return types.PubConference
	case "Books and Theses":
		return types.PubBook
	case "":
		return ""
	default:
		return types.PubOther
	}
}

// dropNameSuffix removes the numeric disambiguation suffix DBLP appends
// to homonymous author names ("Wei Zhang 0004").
func dropNameSuffix(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			return name[:i]
		}
	}
	return name
}
