// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// custom is a metadata adapter driven entirely by declarative rules from
// a descriptor: a URL template for the decide phase and per-field regex
// extractions for the parse phase. Rules cannot reach host capabilities
// beyond the request and candidate shapes, so operators can register
// extra sources (an institutional mirror, say) purely through settings.
type custom struct {
	Base
	rules   types.CustomRules
	fields  map[string]*regexp.Regexp
	confirm match.Confirmer
}

// newCustom compiles the descriptor's rules. A malformed rule set fails
// here, at build time, and is downgraded by the caller to a per-adapter
// error; it never aborts the chain.
func newCustom(desc types.Descriptor, env Env) (Adapter, error) {
	r := desc.Custom
	if r == nil || r.URLTemplate == "" {
		return nil, fmt.Errorf("custom adapter needs a url_template")
	}

	fields := make(map[string]*regexp.Regexp, len(r.Fields))
	for field, pattern := range r.Fields {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("field %q pattern: %w", field, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("field %q pattern has no capture group", field)
		}
		fields[field] = re
	}

	return &custom{
		Base:    Base{Desc: desc, Client: env.Client},
		rules:   *r,
		fields:  fields,
		confirm: env.Confirm,
	}, nil
}

func (c *custom) Decide(d *types.Draft) Request {
	for _, req := range c.rules.Require {
		if draftField(d, req) == "" {
			return Request{}
		}
	}

	target := c.rules.URLTemplate
	for _, name := range []string{"title", "doi", "arxiv"} {
		ph := "{" + name + "}"
		if strings.Contains(target, ph) {
			target = strings.ReplaceAll(target, ph, url.QueryEscape(draftField(d, name)))
		}
	}

	method := c.rules.Method
	if method == "" {
		method = http.MethodGet
	}
	return Request{URL: target, Method: method, Headers: c.rules.Headers, Enabled: true}
}

func (c *custom) Parse(body []byte, d *types.Draft, ap *Applier) error {
	if body == nil {
		return nil
	}

	cand := types.Candidate{}
	text := string(body)
	for field, re := range c.fields {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		switch field {
		case FieldTitle:
			cand.Title = value
		case FieldAuthors:
			cand.Authors = splitAuthors(value)
		case FieldPublication:
			cand.Publication = value
		case FieldPubTime:
			cand.PubTime = value
		case FieldDOI:
			cand.DOI = value
		case FieldArxiv:
			cand.ArxivID = value
		case FieldPages:
			cand.Pages = value
		case FieldVolume:
			cand.Volume = value
		case FieldNumber:
			cand.Number = value
		case FieldPublisher:
			cand.Publisher = value
		case FieldCodes:
			cand.Codes = []string{value}
		case FieldSupURLs:
			cand.SupURLs = []string{value}
		}
	}

	// Sources keyed on a title search must pass confirmation; identifier
	// lookups (doi/arxiv required) already target the exact paper.
	if d.Title != "" && cand.Title != "" && !identifierGated(c.rules.Require) {
		if !c.confirm.Confirm(cand.Title, d.Title) {
			return nil
		}
	}

	ap.Apply(d, &cand, c.Priority())
	return nil
}

func identifierGated(require []string) bool {
	for _, r := range require {
		if r == "doi" || r == "arxiv" {
			return true
		}
	}
	return false
}

func draftField(d *types.Draft, name string) string {
	switch name {
	case "title":
		return d.Title
	case "doi":
		return d.DOI
	case "arxiv":
		return d.ArxivID
	default:
		return ""
	}
}

// splitAuthors breaks a delimited author string on the separators the
// common export formats use.
func splitAuthors(s string) []string {
	s = strings.ReplaceAll(s, " and ", ";")
	s = strings.ReplaceAll(s, ",", ";")
	var out []string
	for _, part := range strings.Split(s, ";") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
