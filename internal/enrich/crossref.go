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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// crossrefAdapter resolves bibliographic fields from CrossRef: a direct
// works lookup when the draft has a DOI, a bibliographic title search
// with fuzzy confirmation otherwise.
type crossrefAdapter struct {
	adapter.Base
	confirm match.Confirmer
}

func newCrossRef(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &crossrefAdapter{
		Base:    adapter.Base{Desc: desc, Client: env.Client},
		confirm: env.Confirm,
	}, nil
}

func (c *crossrefAdapter) Decide(d *types.Draft) adapter.Request {
	switch {
	case d.DOI != "":
		return adapter.Request{URL: crossrefAPIBase + "/" + url.PathEscape(d.DOI), Enabled: true}
	case d.Title != "":
		return adapter.Request{
			URL:     crossrefAPIBase + "?rows=3&query.bibliographic=" + url.QueryEscape(d.Title),
			Enabled: true,
		}
	default:
		return adapter.Request{}
	}
}

// CrossRef API JSON structures. The message is a single work for DOI
// lookups and a result list for searches.
type crossrefResponse struct {
	Message json.RawMessage `json:"message"`
}

type crossrefList struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefAuthor `json:"author"`
	Type           string           `json:"type"`
	DOI            string           `json:"DOI"`
	Page           string           `json:"page"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Publisher      string           `json:"publisher"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (c *crossrefAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}

	var resp crossrefResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing CrossRef response: %w", err)
	}

	var work *crossrefWork
	searched := d.DOI == ""
	if searched {
		var list crossrefList
		if err := json.Unmarshal(resp.Message, &list); err != nil {
			return fmt.Errorf("parsing CrossRef result list: %w", err)
		}
		titles := make([]string, len(list.Items))
		for i, item := range list.Items {
			if len(item.Title) > 0 {
				titles[i] = item.Title[0]
			}
		}
		best := c.confirm.Best(d.Title, titles)
		if best < 0 {
			return nil
		}
		work = &list.Items[best]
	} else {
		var w crossrefWork
		if err := json.Unmarshal(resp.Message, &w); err != nil {
			return fmt.Errorf("parsing CrossRef work: %w", err)
		}
		work = &w
	}

	cand := types.Candidate{
		DOI:       work.DOI,
		Pages:     work.Page,
		Volume:    work.Volume,
		Number:    work.Issue,
		Publisher: work.Publisher,
		PubType:   crossrefPubType(work.Type),
	}
	if len(work.Title) > 0 {
		cand.Title = work.Title[0]
	}
	if len(work.ContainerTitle) > 0 {
		cand.Publication = work.ContainerTitle[0]
	}
	for _, au := range work.Author {
		name := strings.TrimSpace(au.Given + " " + au.Family)
		if name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}
	if len(work.Issued.DateParts) > 0 && len(work.Issued.DateParts[0]) > 0 {
		cand.PubTime = strconv.Itoa(work.Issued.DateParts[0][0])
	}

	ap.Apply(d, &cand, c.Priority())
	return nil
}

func crossrefPubType(t string) types.PubType {
	switch t {
	case "journal-article":
		return types.PubJournal
	case "proceedings-article":
		return types.PubConference
	case "book", "monograph", "edited-book":
		return types.PubBook
	case "":
		return ""
	default:
		return types.PubOther
	}
}
